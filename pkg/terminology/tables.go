package terminology

// Built-in AYUSH/NAMASTE vocabulary. Covers the condition names, system
// labels and severity labels commonly seen in TM2 exports across Ayurveda
// (Sanskrit/Hindi), Siddha (Tamil), Unani (Urdu) and Homeopathy sources.
// Deployments extend these through a YAML catalog or the admin API.

var defaultConditionMappings = map[string]string{
	// Ayurvedic conditions (Sanskrit/Hindi)
	"शिरःशूल":          "Headache",
	"शीर्षवेदना":       "Head Pain",
	"अजीर्ण":           "Indigestion",
	"अग्निमांद्य":      "Digestive Weakness",
	"ज्वर":             "Fever",
	"सन्धिवात":         "Arthritis",
	"अस्थिसंधि वेदना":  "Bone and Joint Pain",
	"संधिशूल":          "Joint Pain",
	"कटिशूल":           "Back Pain",
	"कटिवेदना":         "Lower Back Pain",
	"अर्श":             "Hemorrhoids",
	"पाइल्स":           "Piles",
	"कास":              "Cough",
	"श्वास":            "Asthma",
	"श्वसन रोग":        "Respiratory Disorder",
	"नासावेग":          "Allergic Rhinitis",
	"नाक बहना":         "Runny Nose",
	"अतिसार":           "Diarrhea",
	"गुदव्रण":          "Anal Fissure",
	"मुंहासे":          "Acne",
	"त्वचा रोग":        "Skin Disease",
	"खाज":              "Itching",
	"दाद":              "Ringworm",
	"एक्जिमा":          "Eczema",
	"बवासीर":           "Hemorrhoids",
	"अनिद्रा":          "Insomnia",
	"निद्रानाश":        "Sleep Disorder",
	"मानसिक तनाव":      "Mental Stress",
	"चिंता":            "Anxiety",
	"अवसाद":            "Depression",
	"स्मृति हानि":      "Memory Loss",
	"मधुमेह":           "Diabetes",
	"प्रमेह":           "Diabetes Mellitus",
	"रक्तचाप":          "Hypertension",
	"उच्च रक्तचाप":     "High Blood Pressure",
	"हृदय रोग":         "Heart Disease",
	"हृदयाघात":         "Heart Attack",
	"स्त्री रोग":       "Gynecological Disorder",
	"मासिक धर्म विकार": "Menstrual Disorder",
	"बांझपन":           "Infertility",
	"गर्भधारण समस्या":  "Pregnancy Complications",
	"बाल रोग":          "Pediatric Disorder",
	"बच्चों की बीमारी": "Childhood Illness",
	"वृद्धावस्था रोग":  "Geriatric Disorder",
	"बुढ़ापे की बीमारी": "Age-related Disease",

	// Siddha conditions (Tamil)
	"வலி":               "Pain",
	"காய்ச்சல்":         "Fever",
	"இருமல்":            "Cough",
	"மூச்சுத்திணறல்":    "Breathing Difficulty",
	"வயிற்றுப்போக்கு":   "Diarrhea",
	"கல்லீரல் நோய்":     "Liver Disease",
	"சிறுநீர்ப்பை நோய்": "Bladder Disease",
	"நீரிழிவு நோய்":     "Diabetes",

	// Unani conditions (Urdu)
	"سرد و بلغم": "Cold and Phlegm",
	"حرارت":      "Heat/Fever",
	"سعال":       "Cough",
	"زکام":       "Cold",
	"اسہال":      "Diarrhea",
	"قئ":         "Nausea",
	"دموی":       "Bloody",
	"سفید":       "White Discharge",

	// Homeopathy conditions (Hindi)
	"सिर दर्द": "Headache",
	"पेट दर्द": "Abdominal Pain",
	"बुखार":    "Fever",
	"खांसी":    "Cough",
	"दस्त":     "Diarrhea",
	"एलर्जी":   "Allergy",

	// Additional common conditions
	"माइग्रेन":  "Migraine",
	"टी बी":     "Tuberculosis",
	"कैंसर":     "Cancer",
	"एड्स":      "AIDS",
	"मलेरिया":   "Malaria",
	"डेंगू":     "Dengue",
	"चिकनगुनिया": "Chikungunya",
	"कोविड":     "COVID-19",
	"कोरोना":    "Coronavirus",

	// English passthrough normalization
	"headache":     "Headache",
	"fever":        "Fever",
	"cough":        "Cough",
	"cold":         "Common Cold",
	"diarrhea":     "Diarrhea",
	"indigestion":  "Indigestion",
	"arthritis":    "Arthritis",
	"asthma":       "Asthma",
	"diabetes":     "Diabetes",
	"hypertension": "Hypertension",
	"anxiety":      "Anxiety",
	"depression":   "Depression",
	"insomnia":     "Insomnia",
	"acne":         "Acne",
	"eczema":       "Eczema",
	"migraine":     "Migraine",
}

var defaultSystemTypeMappings = map[string]string{
	"आयुर्वेद":          "Ayurveda",
	"सिद्ध":             "Siddha",
	"यूनानी":            "Unani",
	"होम्योपैथी":        "Homeopathy",
	"ஆயுர்வேதம்":        "Ayurveda",
	"சித்த மருத்துவம்":  "Siddha",
	"யூனானி மருத்துவம்": "Unani",
	"ஹோமியோபதி":         "Homeopathy",
}

var defaultSeverityMappings = map[string]string{
	"मृदु":    "Mild",
	"मध्यम":   "Moderate",
	"तीव्र":   "Severe",
	"गंभीर":   "Critical",
	"हल्का":   "Mild",
	"भारी":    "Severe",
	"कुपोषण":  "Malnutrition",
	"जटिल":    "Complicated",
}
