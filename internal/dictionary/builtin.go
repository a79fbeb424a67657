package dictionary

import "github.com/ppiankov/vigil/internal/model"

// builtinSource names the embedded dictionaries in configuration errors.
const builtinSource = "builtin"

// builtinLanguages ships with the binary. Entries are in each language's own
// script; order is significant and preserved in match output.
var builtinLanguages = map[string]map[model.Category][]string{
	"english": {
		model.CategoryViolentActions: {
			"kill", "attack", "shoot", "murder", "destroy", "stab", "kidnap",
			"burn", "explode", "assassinate", "hurt", "slaughter", "behead",
			"blow up",
		},
		model.CategoryWeapons: {
			"bomb", "gun", "rifle", "pistol", "explosive", "explosives",
			"grenade", "knife", "weapon", "weapons", "ammunition", "ied",
			"missile", "detonator",
		},
		model.CategoryEvents: {
			"explosion", "blast", "riot", "rally", "protest", "meeting",
			"gathering", "ceremony", "parade", "festival", "procession",
		},
		model.CategoryTargets: {
			"market", "school", "temple", "mosque", "church", "station",
			"airport", "police", "army", "government", "crowd", "bridge",
			"hospital", "minister", "embassy",
		},
		model.CategoryUrgency: {
			"now", "today", "tonight", "tomorrow", "immediately", "soon",
			"urgent", "quickly", "hurry", "asap",
		},
	},
	"hindi": {
		model.CategoryViolentActions: {
			"मारो", "मार", "हत्या", "हमला", "कत्ल", "अपहरण", "जलाओ", "उड़ा",
		},
		model.CategoryWeapons: {
			"बम", "बंदूक", "गोली", "हथियार", "विस्फोटक", "चाकू", "पिस्तौल",
			"राइफल", "ग्रेनेड",
		},
		model.CategoryEvents: {
			"धमाका", "विस्फोट", "दंगा", "रैली", "जुलूस", "सभा", "मेला",
		},
		model.CategoryTargets: {
			"बाजार", "बाज़ार", "स्कूल", "मंदिर", "मस्जिद", "स्टेशन", "पुलिस",
			"सेना", "सरकार", "भीड़", "अस्पताल",
		},
		model.CategoryUrgency: {
			"अभी", "आज", "जल्दी", "तुरंत", "फौरन", "कल",
		},
	},
	"urdu": {
		model.CategoryViolentActions: {
			"مارو", "قتل", "حملہ", "اغوا", "جلاؤ", "اڑا",
		},
		model.CategoryWeapons: {
			"بم", "بندوق", "گولی", "ہتھیار", "چاقو", "پستول", "گرینیڈ",
		},
		model.CategoryEvents: {
			"دھماکہ", "فساد", "ریلی", "جلسہ", "جلوس",
		},
		model.CategoryTargets: {
			"بازار", "اسکول", "مسجد", "مندر", "اسٹیشن", "پولیس", "فوج",
			"حکومت", "ہسپتال",
		},
		model.CategoryUrgency: {
			"ابھی", "آج", "جلدی", "فوراً", "کل",
		},
	},
}

// builtinAliases maps ISO 639-1 codes and common variants to dictionary names.
var builtinAliases = map[string]string{
	"en":    "english",
	"en-us": "english",
	"en-gb": "english",
	"hi":    "hindi",
	"hi-in": "hindi",
	"ur":    "urdu",
	"ur-pk": "urdu",
	"ur-in": "urdu",
}
