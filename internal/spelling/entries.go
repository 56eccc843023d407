package spelling

// DefaultEntries is the built-in misspelling table. Keys and values are lower
// case and no value appears as a key.
var DefaultEntries = map[string]string{
	"teh":          "the",
	"hte":          "the",
	"adn":          "and",
	"nad":          "and",
	"taht":         "that",
	"thier":        "their",
	"wiht":         "with",
	"whcih":        "which",
	"becuase":      "because",
	"beacuse":      "because",
	"dreamm":       "dream",
	"recieve":      "receive",
	"recieved":     "received",
	"beleive":      "believe",
	"belive":       "believe",
	"acheive":      "achieve",
	"wierd":        "weird",
	"freind":       "friend",
	"freinds":      "friends",
	"peice":        "piece",
	"definately":   "definitely",
	"definatly":    "definitely",
	"seperate":     "separate",
	"seperately":   "separately",
	"occured":      "occurred",
	"occurence":    "occurrence",
	"occassion":    "occasion",
	"untill":       "until",
	"tommorow":     "tomorrow",
	"tomorow":      "tomorrow",
	"accomodate":   "accommodate",
	"adress":       "address",
	"apparantly":   "apparently",
	"arguement":    "argument",
	"begining":     "beginning",
	"buisness":     "business",
	"calender":     "calendar",
	"collegue":     "colleague",
	"comming":      "coming",
	"commited":     "committed",
	"concious":     "conscious",
	"enviroment":   "environment",
	"existance":    "existence",
	"finaly":       "finally",
	"foriegn":      "foreign",
	"goverment":    "government",
	"grammer":      "grammar",
	"happend":      "happened",
	"immediatly":   "immediately",
	"independant":  "independent",
	"knowlege":     "knowledge",
	"libary":       "library",
	"lenght":       "length",
	"neccessary":   "necessary",
	"necesary":     "necessary",
	"noticable":    "noticeable",
	"publically":   "publicly",
	"realy":        "really",
	"recomend":     "recommend",
	"refered":      "referred",
	"relevent":     "relevant",
	"remeber":      "remember",
	"resturant":    "restaurant",
	"succesful":    "successful",
	"suprise":      "surprise",
	"truely":       "truly",
	"wich":         "which",
	"writting":     "writing",
	"alot":         "a lot",
	"dont":         "don't",
	"doesnt":       "doesn't",
	"didnt":        "didn't",
	"isnt":         "isn't",
	"wasnt":        "wasn't",
	"couldnt":      "couldn't",
	"shouldnt":     "shouldn't",
	"wouldnt":      "wouldn't",
	"havent":       "haven't",
	"thats":        "that's",
	"whats":        "what's",
	"wanna":        "want to",
	"gonna":        "going to",
	"probaly":      "probably",
	"probly":       "probably",
	"basicly":      "basically",
	"embarass":     "embarrass",
	"occurance":    "occurrence",
	"persue":       "pursue",
	"posession":    "possession",
	"prefered":     "preferred",
	"questionaire": "questionnaire",
	"reccomend":    "recommend",
	"rythm":        "rhythm",
	"sentance":     "sentence",
	"speach":       "speech",
	"strenght":     "strength",
	"thru":         "through",
	"tounge":       "tongue",
	"wether":       "whether",
	"yeild":        "yield",
}
