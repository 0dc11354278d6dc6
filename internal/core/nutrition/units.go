package nutrition

import (
	"regexp"
	"strconv"
	"strings"
)

// Gram conversion for Japanese cooking quantities. The numbers are best-effort
// kitchen estimates (water-equivalent volumes, average item weights), not food
// science; callers treat 0 as "no nutrition contribution".

type unitGrams struct {
	name  string
	grams float64
}

// Scan order matters: parseQuantity takes the first unit name found in the
// text, so e.g. "kg" in free text resolves through "g" first.
var unitTable = []unitGrams{
	{"小さじ", 5.0},
	{"大さじ", 15.0},
	{"カップ", 200.0},
	{"合", 180.0},
	{"ml", 1.0},
	{"cc", 1.0},
	{"リットル", 1000.0},
	{"L", 1000.0},
	{"g", 1.0},
	{"kg", 1000.0},
}

type foodWeight struct {
	name  string
	grams float64
}

// Average weight of one item (1個, 1本, 1枚, ...) per food.
var foodWeights = []foodWeight{
	{"卵", 60.0},
	{"たまご", 60.0},
	{"玉子", 60.0},
	{"トマト", 150.0},
	{"たまねぎ", 200.0},
	{"玉ねぎ", 200.0},
	{"じゃがいも", 150.0},
	{"にんじん", 150.0},
	{"人参", 150.0},
	{"きゅうり", 100.0},
	{"なす", 80.0},
	{"ピーマン", 30.0},
	{"パプリカ", 150.0},
	{"にんにく", 6.0},  // 1片
	{"しょうが", 15.0}, // 1かけ
	{"生姜", 15.0},
	{"大根", 1000.0},
	{"キャベツ", 1000.0},
	{"白菜", 2000.0},
	{"レタス", 300.0},
	{"ブロッコリー", 300.0},
	{"かぼちゃ", 1500.0},
	{"さつまいも", 250.0},
	{"れんこん", 200.0},
	{"ごぼう", 150.0},
	{"長ねぎ", 100.0},
	{"ねぎ", 100.0},
	{"バナナ", 120.0},
	{"りんご", 300.0},
	{"みかん", 80.0},
	{"レモン", 100.0},
	{"鶏もも肉", 250.0}, // 1枚
	{"鶏むね肉", 250.0},
	{"鶏ささみ", 50.0}, // 1本
	{"豚ロース", 200.0},
	{"豚バラ", 200.0},
	{"鮭", 80.0}, // 1切れ
	{"サーモン", 80.0},
	{"豆腐", 300.0}, // 1丁
	{"油揚げ", 30.0},
	{"厚揚げ", 150.0},
	{"ちくわ", 30.0},
	{"ソーセージ", 20.0},
	{"ウインナー", 20.0},
	{"食パン", 60.0}, // 1枚 (6枚切り)
	{"パン", 60.0},
}

var fractionMap = map[string]float64{
	"1/2": 0.5,
	"1/3": 1.0 / 3.0,
	"2/3": 2.0 / 3.0,
	"1/4": 0.25,
	"3/4": 0.75,
	"半":   0.5,
}

var counterWords = map[string]bool{
	"個": true, "本": true, "枚": true, "丁": true, "切れ": true,
	"かけ": true, "片": true, "束": true, "袋": true, "パック": true, "缶": true,
}

var vagueWords = map[string]bool{
	"少々": true, "適量": true, "適宜": true, "お好みで": true,
}

var qtyPattern = regexp.MustCompile(
	`^(\d+(?:\.\d+)?(?:/\d+)?|半)?\s*` +
		`(小さじ|大さじ|カップ|合|個|本|枚|丁|切れ|かけ|片|束|袋|パック|缶|ml|cc|リットル|L|g|kg|cm)?`)

// ParseQuantity parses a Japanese cooking quantity string like 大さじ2, 1/2本
// or 少々 into an (amount, unit) pair. Unparseable text defaults to (1.0, "").
func ParseQuantity(text string) (float64, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 1.0, ""
	}

	if vagueWords[text] {
		return 1.0, text
	}

	// Unit name anywhere in the text: strip it, parse the rest as the amount.
	for _, u := range unitTable {
		if strings.Contains(text, u.name) {
			rest := strings.TrimSpace(strings.ReplaceAll(text, u.name, ""))
			amount := 1.0
			if rest != "" {
				amount = parseNumber(rest)
			}
			return amount, u.name
		}
	}

	// Number + counter word at the start (2個, 1/2本, 半丁, ...).
	m := qtyPattern.FindStringSubmatch(text)
	if m != nil {
		amount := 1.0
		if m[1] != "" {
			amount = parseNumber(m[1])
		}
		return amount, m[2]
	}

	return 1.0, ""
}

// parseNumber parses a plain number, an a/b fraction, or 半. Malformed input
// falls back to 1.0.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1.0
	}

	if v, ok := fractionMap[s]; ok {
		return v
	}

	if strings.Contains(s, "/") {
		parts := strings.SplitN(s, "/", 2)
		num, err1 := strconv.ParseFloat(parts[0], 64)
		den, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil || den == 0 {
			return 1.0
		}
		return num / den
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return 1.0
}

// ToGrams converts an amount with unit to an estimated weight in grams.
// Counter words resolve through the per-food weight table using foodName;
// an unknown food defaults to 100g per item. Returns 0 when the unit cannot
// be converted at all.
func ToGrams(amount float64, unit string, foodName string) float64 {
	for _, u := range unitTable {
		if unit == u.name {
			return amount * u.grams
		}
	}

	if counterWords[unit] {
		if foodName != "" {
			for _, fw := range foodWeights {
				if strings.Contains(foodName, fw.name) || strings.Contains(fw.name, foodName) {
					return amount * fw.grams
				}
			}
		}
		return amount * 100.0
	}

	if unit == "" {
		if amount >= 5 {
			return amount // likely already grams
		}
		return amount * 100.0 // likely counting pieces
	}

	if vagueWords[unit] {
		return 2.0
	}

	if unit == "cm" {
		// For things like しょうが1cm.
		return amount * 5.0
	}

	return 0.0
}
