package signals

import "github.com/antoniostano/fitbot/internal/textrule"

var categoryRules = textrule.Table{
	textrule.Words("tonneau cover", "tonneau cover", "tonneau covers", "tonneau", "bed cover", "bed covers"),
	textrule.Words("cold air intake", "cold air intake", "cold air intakes", "air intake"),
	textrule.Words("running boards", "running boards", "running board"),
	textrule.Words("side steps", "side steps", "side step", "nerf bars", "nerf bar"),
	textrule.Words("floor mats", "floor mats", "floor mat", "floor liners", "floor liner"),
	textrule.Words("bed liner", "bed liner", "bed liners", "bedliner", "bed mat"),
	textrule.Words("lift kit", "lift kit", "lift kits"),
	textrule.Words("leveling kit", "leveling kit", "leveling kits", "levelling kit"),
	textrule.Words("brake pads", "brake pads", "brake pad"),
	textrule.Words("brake rotors", "brake rotors", "brake rotor", "rotors"),
	textrule.Words("shocks", "shocks", "shock absorbers", "shock absorber"),
	textrule.Words("struts", "struts", "strut"),
	textrule.Words("exhaust system", "exhaust system", "cat-back exhaust", "cat back exhaust", "exhaust"),
	textrule.Words("light bar", "led light bar", "light bar", "light bars"),
	textrule.Words("headlights", "headlights", "headlight", "headlamps"),
	textrule.Words("trailer hitch", "trailer hitch", "tow hitch", "hitch"),
	textrule.Words("mud flaps", "mud flaps", "mud flap", "splash guards"),
	textrule.Words("seat covers", "seat covers", "seat cover"),
	textrule.Words("all-terrain tires", "all-terrain tires", "all terrain tires", "at tires"),
	textrule.Words("tires", "tires", "tyres"),
	textrule.Words("wheels", "wheels", "rims"),
	textrule.Words("air filter", "air filter", "air filters"),
	textrule.Words("oil filter", "oil filter", "oil filters"),
	textrule.Words("spark plugs", "spark plugs", "spark plug"),
	textrule.Words("wiper blades", "wiper blades", "wiper blade", "wipers"),
	textrule.Words("bed rack", "bed rack", "bed racks", "overland rack"),
	textrule.Words("roof rack", "roof rack", "roof racks"),
	textrule.Words("grille guard", "grille guard", "bull bar", "brush guard"),
	textrule.Words("winch", "winch", "winches"),
	textrule.Words("truck bed tool box", "tool box", "toolbox", "truck box"),
	textrule.Words("truck bed tent", "truck bed tent", "bed tent"),
	textrule.Words("tailgate assist", "tailgate assist", "tailgate damper"),
	textrule.Words("performance tuner", "performance tuner", "tuner"),
	textrule.Words("battery", "battery", "batteries"),
	textrule.Words("towing mirrors", "towing mirrors", "tow mirrors"),
	textrule.Words("bumper", "front bumper", "rear bumper", "bumper"),
}

var brandRules = textrule.Table{
	textrule.Words("BAKFlip", "bakflip", "bak flip"),
	textrule.Words("BAK", "bak industries", "bak"),
	textrule.Words("TruXedo", "truxedo"),
	textrule.Words("Extang", "extang"),
	textrule.Words("UnderCover", "undercover"),
	textrule.Words("Retrax", "retrax"),
	textrule.Words("Gator", "gator covers", "gator"),
	textrule.Words("Roll-N-Lock", "roll-n-lock", "roll n lock"),
	textrule.Words("Rough Country", "rough country"),
	textrule.Words("Bilstein", "bilstein"),
	textrule.Words("Fox", "fox racing shox", "fox shocks", "fox"),
	textrule.Words("K&N", "k&n", "k & n", "k and n"),
	textrule.Words("AEM", "aem"),
	textrule.Words("aFe Power", "afe power", "afe"),
	textrule.Words("Borla", "borla"),
	textrule.Words("Flowmaster", "flowmaster"),
	textrule.Words("MagnaFlow", "magnaflow"),
	textrule.Words("WeatherTech", "weathertech"),
	textrule.Words("Husky Liners", "husky liners", "husky"),
	textrule.Words("Lund", "lund"),
	textrule.Words("Go Rhino", "go rhino"),
	textrule.Words("AMP Research", "amp research"),
	textrule.Words("Westin", "westin"),
	textrule.Words("Power Stop", "power stop", "powerstop"),
	textrule.Words("Brembo", "brembo"),
	textrule.Words("Bosch", "bosch"),
	textrule.Words("ACDelco", "acdelco", "ac delco"),
	textrule.Words("Motorcraft", "motorcraft"),
	textrule.Words("BFGoodrich", "bfgoodrich", "bf goodrich"),
	textrule.Words("Falken", "falken"),
	textrule.Words("Toyo", "toyo"),
	textrule.Words("Nitto", "nitto"),
	textrule.Words("Michelin", "michelin"),
	textrule.Words("Warn", "warn industries", "warn winch", "warn zeon", "warn vr"),
	textrule.Words("Baja Designs", "baja designs"),
	textrule.Words("Rigid Industries", "rigid industries"),
	textrule.Words("CURT", "curt"),
	textrule.Words("B&W", "b&w"),
	textrule.Words("Yakima", "yakima"),
	textrule.Words("Thule", "thule"),
	textrule.Words("DECKED", "decked drawer system", "decked drawers", "decked drawer"),
	textrule.Words("Leer", "leer"),
	textrule.Words("Superchips", "superchips"),
	textrule.Words("Hypertech", "hypertech"),
	textrule.Words("Optima", "optima"),
}

// Phrases that look like product names but are narrative or generic.
var phraseStoplist = map[string]struct{}{
	"these include":    {},
	"here are":         {},
	"pros and cons":    {},
	"best overall":     {},
	"best value":       {},
	"best budget":      {},
	"best for towing":  {},
	"top picks":        {},
	"key features":     {},
	"quick tips":       {},
	"bottom line":      {},
	"final thoughts":   {},
	"hard folding":     {},
	"soft roll up":     {},
	"check price":      {},
	"install time":     {},
	"great choice":     {},
	"united states":    {},
	"united kingdom":   {},
	"amazon prime":     {},
	"customer reviews": {},
	"why it works":     {},
	"what to look for": {},
	"not sure":         {},
	"let me know":      {},
	"good luck":        {},
	"happy trails":     {},
	"safety first":     {},
	"step one":         {},
	"step two":         {},
	"option one":       {},
	"option two":       {},
	"pro tip":          {},
	"heads up":         {},
	"note that":        {},
	"keep in mind":     {},
}

// Leading words trimmed off a harvested run before it is judged.
var leadingFiller = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "try": {}, "consider": {}, "check": {}, "get": {},
	"both": {}, "your": {}, "my": {}, "our": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "for": {}, "with": {}, "and": {}, "or": {}, "if": {}, "when": {},
	"also": {}, "then": {}, "pick": {}, "grab": {}, "go": {}, "see": {}, "look": {},
	"i": {}, "we": {}, "you": {}, "it": {}, "is": {}, "yes": {}, "no": {}, "but": {},
}

// Tokens that say a phrase names a product.
var productTokens = map[string]struct{}{
	"kit": {}, "kits": {}, "series": {}, "filter": {}, "filters": {}, "pads": {}, "pad": {},
	"cover": {}, "covers": {}, "intake": {}, "liner": {}, "liners": {}, "mats": {}, "mat": {},
	"boards": {}, "board": {}, "steps": {}, "bars": {}, "bar": {}, "shocks": {}, "shock": {},
	"struts": {}, "strut": {}, "tires": {}, "tire": {}, "lights": {}, "light": {}, "rack": {},
	"racks": {}, "hitch": {}, "exhaust": {}, "muffler": {}, "plugs": {}, "blades": {},
	"rotors": {}, "rotor": {}, "brakes": {}, "winch": {}, "bumper": {}, "guard": {}, "box": {},
	"tonneau": {}, "tuner": {}, "battery": {}, "mirrors": {}, "tent": {}, "spacers": {},
	"coilovers": {}, "coilover": {}, "leveling": {}, "lift": {}, "system": {}, "assist": {},
	"damper": {}, "flaps": {}, "wipers": {}, "headlights": {}, "pods": {}, "drawers": {},
}
