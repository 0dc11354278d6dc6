package planner

import (
	"strings"

	"kondate-planner/internal/core/cookpad"
	"kondate-planner/internal/core/match"
)

type categoryKeywords struct {
	category string
	keywords []string
}

// categoryTable maps name keywords to fridge categories. Checked in order,
// first hit wins; specific categories come before ones with generic keywords
// (油揚げ must resolve as 豆腐・大豆 before 調味料 sees 油).
var categoryTable = []categoryKeywords{
	{"卵", []string{"卵", "たまご", "玉子"}},
	{"乳製品", []string{"牛乳", "チーズ", "バター", "ヨーグルト", "生クリーム"}},
	{"豆腐・大豆", []string{"豆腐", "納豆", "油揚げ", "厚揚げ", "豆乳", "大豆"}},
	{"肉", []string{"肉", "ベーコン", "ハム", "ソーセージ", "ウインナー", "ひき肉", "ミンチ"}},
	{"魚", []string{"魚", "鮭", "サーモン", "まぐろ", "マグロ", "さば", "サバ", "えび", "エビ", "いか", "イカ", "たこ", "タコ", "ぶり", "あじ", "いわし", "ちくわ", "かまぼこ"}},
	{"野菜", []string{"野菜", "トマト", "きゅうり", "なす", "キャベツ", "レタス", "白菜", "ほうれん草", "小松菜", "ねぎ", "たまねぎ", "玉ねぎ", "にんじん", "人参", "じゃがいも", "大根", "ごぼう", "ピーマン", "パプリカ", "ブロッコリー", "もやし", "かぼちゃ", "きのこ", "しいたけ", "しめじ", "えのき", "にんにく", "しょうが", "生姜"}},
	{"果物", []string{"りんご", "バナナ", "みかん", "レモン", "いちご", "ぶどう", "もも", "梨", "柿", "キウイ"}},
	{"穀物", []string{"米", "ごはん", "パン", "麺", "パスタ", "うどん", "そば", "小麦粉"}},
	{"調味料", []string{"醤油", "しょうゆ", "味噌", "みそ", "塩", "砂糖", "酢", "みりん", "酒", "油", "マヨネーズ", "ケチャップ", "ソース", "だし", "コンソメ"}},
	{"飲料", []string{"ジュース", "お茶", "コーヒー", "紅茶", "水"}},
}

const defaultCategory = "その他"

// GuessCategory guesses the fridge category of an ingredient from name
// keywords.
func GuessCategory(name string) string {
	for _, entry := range categoryTable {
		for _, kw := range entry.keywords {
			if strings.Contains(name, kw) {
				return entry.category
			}
		}
	}
	return defaultCategory
}

// annotateIngredients attaches storage location and fridge availability to a
// recipe's ingredient list, skipping headline entries.
func (p *MealPlanner) annotateIngredients(ingredients []cookpad.RecipeIngredient, detectedNames []string) []AnnotatedIngredient {
	annotated := make([]AnnotatedIngredient, 0, len(ingredients))
	for _, ing := range ingredients {
		if ing.Headline {
			continue
		}
		annotated = append(annotated, AnnotatedIngredient{
			Name:              ing.Name,
			Quantity:          ing.Quantity,
			StorageLocation:   p.storageLocation(GuessCategory(ing.Name)),
			AvailableInFridge: match.Any(p.matcher, ing.Name, detectedNames),
		})
	}
	return annotated
}

// storageLocation maps a category to a fridge compartment, falling back to
// the location configured for その他.
func (p *MealPlanner) storageLocation(category string) string {
	if loc, ok := p.storageLocations[category]; ok {
		return loc
	}
	if loc, ok := p.storageLocations[defaultCategory]; ok {
		return loc
	}
	return "冷蔵室"
}
