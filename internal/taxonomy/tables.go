package taxonomy

// Canonical values, synonyms and substring fallbacks per attribute kind.
// Lookup keys are compacted: lower case with everything but letters and digits
// removed, so "Sea View", "seaView" and "sea_view" all read "seaview".

type heuristic struct {
	contains string
	value    string
}

type table struct {
	values     []string
	aliases    map[string]string
	heuristics []heuristic
}

var featureTable = table{
	values: []string{
		"AIR_CONDITIONING", "BALCONY", "BATHTUB", "BUILT_IN_WARDROBE", "FURNISHED", "GARDEN",
		"KITCHEN", "MICROWAVE", "PARKING", "PETS_ALLOWED", "PRIVATE_POOL", "REFRIGERATOR",
		"SECURITY_SYSTEM", "STORAGE", "TV", "WASHING_MACHINE", "WATER_HEATER", "WIFI",
	},
	aliases: map[string]string{
		"aircon":         "AIR_CONDITIONING",
		"ac":             "AIR_CONDITIONING",
		"internet":       "WIFI",
		"wireless":       "WIFI",
		"carpark":        "PARKING",
		"garage":         "PARKING",
		"wardrobe":       "BUILT_IN_WARDROBE",
		"washer":         "WASHING_MACHINE",
		"fridge":         "REFRIGERATOR",
		"television":     "TV",
		"furniture":      "FURNISHED",
		"fullyfurnished": "FURNISHED",
		"pets":           "PETS_ALLOWED",
		"petfriendly":    "PETS_ALLOWED",
		"pool":           "PRIVATE_POOL",
		"waterheater":    "WATER_HEATER",
	},
	heuristics: []heuristic{
		{"aircon", "AIR_CONDITIONING"},
		{"wifi", "WIFI"},
		{"internet", "WIFI"},
		{"parking", "PARKING"},
		{"pool", "PRIVATE_POOL"},
		{"furnish", "FURNISHED"},
		{"kitchen", "KITCHEN"},
		{"balcon", "BALCONY"},
		{"garden", "GARDEN"},
		{"wardrobe", "BUILT_IN_WARDROBE"},
		{"security", "SECURITY_SYSTEM"},
		{"heater", "WATER_HEATER"},
		{"washing", "WASHING_MACHINE"},
		{"pet", "PETS_ALLOWED"},
	},
}

var amenityTable = table{
	values: []string{
		"BBQ_AREA", "CCTV", "CO_WORKING_SPACE", "CONVENIENCE_STORE", "ELEVATOR", "FITNESS",
		"JACUZZI", "KEY_CARD_ACCESS", "KIDS_PLAYGROUND", "LAUNDRY", "LIBRARY", "PARKING",
		"RESTAURANT", "ROOFTOP_GARDEN", "SAUNA", "SECURITY_24H", "SHUTTLE_SERVICE", "STEAM_ROOM",
		"SWIMMING_POOL",
	},
	aliases: map[string]string{
		"pool":            "SWIMMING_POOL",
		"swimming":        "SWIMMING_POOL",
		"gym":             "FITNESS",
		"fitnesscenter":   "FITNESS",
		"security":        "SECURITY_24H",
		"24hsecurity":     "SECURITY_24H",
		"security24hours": "SECURITY_24H",
		"lift":            "ELEVATOR",
		"playground":      "KIDS_PLAYGROUND",
		"coworking":       "CO_WORKING_SPACE",
		"shuttle":         "SHUTTLE_SERVICE",
		"keycard":         "KEY_CARD_ACCESS",
		"bbq":             "BBQ_AREA",
		"steam":           "STEAM_ROOM",
		"minimart":        "CONVENIENCE_STORE",
	},
	heuristics: []heuristic{
		{"pool", "SWIMMING_POOL"},
		{"gym", "FITNESS"},
		{"fitness", "FITNESS"},
		{"sauna", "SAUNA"},
		{"steam", "STEAM_ROOM"},
		{"jacuzzi", "JACUZZI"},
		{"play", "KIDS_PLAYGROUND"},
		{"cowork", "CO_WORKING_SPACE"},
		{"shuttle", "SHUTTLE_SERVICE"},
		{"cctv", "CCTV"},
		{"camera", "CCTV"},
		{"keycard", "KEY_CARD_ACCESS"},
		{"security", "SECURITY_24H"},
		{"lift", "ELEVATOR"},
		{"elevator", "ELEVATOR"},
		{"laundr", "LAUNDRY"},
		{"bbq", "BBQ_AREA"},
		{"rooftop", "ROOFTOP_GARDEN"},
		{"library", "LIBRARY"},
		{"parking", "PARKING"},
	},
}

// Facility categories
const (
	CategoryFitnessSports = "FITNESS_SPORTS"
	CategoryWellness      = "WELLNESS"
	CategoryCommonArea    = "COMMON_AREA"
	CategorySecurity      = "SECURITY"
	CategoryConvenience   = "CONVENIENCE"
)

var facilityCategories = map[string]string{
	"FITNESS":           CategoryFitnessSports,
	"SWIMMING_POOL":     CategoryFitnessSports,
	"TENNIS_COURT":      CategoryFitnessSports,
	"BASKETBALL_COURT":  CategoryFitnessSports,
	"BADMINTON_COURT":   CategoryFitnessSports,
	"YOGA_ROOM":         CategoryFitnessSports,
	"JOGGING_TRACK":     CategoryFitnessSports,
	"SAUNA":             CategoryWellness,
	"STEAM_ROOM":        CategoryWellness,
	"SPA":               CategoryWellness,
	"JACUZZI":           CategoryWellness,
	"LOBBY":             CategoryCommonArea,
	"LIBRARY":           CategoryCommonArea,
	"CO_WORKING_SPACE":  CategoryCommonArea,
	"MEETING_ROOM":      CategoryCommonArea,
	"KIDS_PLAYGROUND":   CategoryCommonArea,
	"GARDEN":            CategoryCommonArea,
	"ROOFTOP_GARDEN":    CategoryCommonArea,
	"BBQ_AREA":          CategoryCommonArea,
	"SECURITY_24H":      CategorySecurity,
	"CCTV":              CategorySecurity,
	"KEY_CARD_ACCESS":   CategorySecurity,
	"PARKING":           CategoryConvenience,
	"ELEVATOR":          CategoryConvenience,
	"LAUNDRY":           CategoryConvenience,
	"SHUTTLE_SERVICE":   CategoryConvenience,
	"CONVENIENCE_STORE": CategoryConvenience,
	"EV_CHARGER":        CategoryConvenience,
}

var facilityTable = table{
	values: keysOf(facilityCategories),
	aliases: map[string]string{
		"gym":           "FITNESS",
		"fitnesscenter": "FITNESS",
		"pool":          "SWIMMING_POOL",
		"swimming":      "SWIMMING_POOL",
		"tennis":        "TENNIS_COURT",
		"basketball":    "BASKETBALL_COURT",
		"badminton":     "BADMINTON_COURT",
		"yoga":          "YOGA_ROOM",
		"jogging":       "JOGGING_TRACK",
		"runningtrack":  "JOGGING_TRACK",
		"steam":         "STEAM_ROOM",
		"coworking":     "CO_WORKING_SPACE",
		"playground":    "KIDS_PLAYGROUND",
		"bbq":           "BBQ_AREA",
		"security":      "SECURITY_24H",
		"keycard":       "KEY_CARD_ACCESS",
		"lift":          "ELEVATOR",
		"evcharging":    "EV_CHARGER",
		"minimart":      "CONVENIENCE_STORE",
	},
	heuristics: []heuristic{
		{"gym", "FITNESS"},
		{"fitness", "FITNESS"},
		{"pool", "SWIMMING_POOL"},
		{"tennis", "TENNIS_COURT"},
		{"basketball", "BASKETBALL_COURT"},
		{"badminton", "BADMINTON_COURT"},
		{"yoga", "YOGA_ROOM"},
		{"jog", "JOGGING_TRACK"},
		{"sauna", "SAUNA"},
		{"steam", "STEAM_ROOM"},
		{"jacuzzi", "JACUZZI"},
		{"lobby", "LOBBY"},
		{"library", "LIBRARY"},
		{"cowork", "CO_WORKING_SPACE"},
		{"meeting", "MEETING_ROOM"},
		{"spa", "SPA"},
		{"play", "KIDS_PLAYGROUND"},
		{"rooftop", "ROOFTOP_GARDEN"},
		{"garden", "GARDEN"},
		{"bbq", "BBQ_AREA"},
		{"cctv", "CCTV"},
		{"keycard", "KEY_CARD_ACCESS"},
		{"security", "SECURITY_24H"},
		{"parking", "PARKING"},
		{"elevator", "ELEVATOR"},
		{"lift", "ELEVATOR"},
		{"laundr", "LAUNDRY"},
		{"shuttle", "SHUTTLE_SERVICE"},
		{"charg", "EV_CHARGER"},
	},
}

var viewTable = table{
	values: []string{
		"CITY_VIEW", "GARDEN_VIEW", "GOLF_VIEW", "LAKE_VIEW", "MOUNTAIN_VIEW", "PARK_VIEW",
		"POOL_VIEW", "RIVER_VIEW", "SEA_VIEW",
	},
	aliases: map[string]string{
		"sea":       "SEA_VIEW",
		"ocean":     "SEA_VIEW",
		"oceanview": "SEA_VIEW",
		"beach":     "SEA_VIEW",
		"city":      "CITY_VIEW",
		"skyline":   "CITY_VIEW",
		"mountain":  "MOUNTAIN_VIEW",
		"garden":    "GARDEN_VIEW",
		"pool":      "POOL_VIEW",
		"river":     "RIVER_VIEW",
		"lake":      "LAKE_VIEW",
		"park":      "PARK_VIEW",
		"golf":      "GOLF_VIEW",
	},
	heuristics: []heuristic{
		{"sea", "SEA_VIEW"},
		{"ocean", "SEA_VIEW"},
		{"beach", "SEA_VIEW"},
		{"city", "CITY_VIEW"},
		{"skyline", "CITY_VIEW"},
		{"mountain", "MOUNTAIN_VIEW"},
		{"hill", "MOUNTAIN_VIEW"},
		{"garden", "GARDEN_VIEW"},
		{"pool", "POOL_VIEW"},
		{"river", "RIVER_VIEW"},
		{"lake", "LAKE_VIEW"},
		{"golf", "GOLF_VIEW"},
		{"park", "PARK_VIEW"},
	},
}

var highlightTable = table{
	values: []string{
		"CORNER_UNIT", "FOREIGN_QUOTA", "FULLY_FURNISHED", "HIGH_FLOOR", "INVESTMENT", "LUXURY",
		"NEAR_BEACH", "NEAR_BTS", "NEAR_MRT", "NEW_DEVELOPMENT", "PET_FRIENDLY", "PRICE_REDUCED",
		"READY_TO_MOVE",
	},
	aliases: map[string]string{
		"new":             "NEW_DEVELOPMENT",
		"newproject":      "NEW_DEVELOPMENT",
		"readytomovein":   "READY_TO_MOVE",
		"bts":             "NEAR_BTS",
		"mrt":             "NEAR_MRT",
		"beach":           "NEAR_BEACH",
		"foreignfreehold": "FOREIGN_QUOTA",
		"furnished":       "FULLY_FURNISHED",
		"corner":          "CORNER_UNIT",
		"discount":        "PRICE_REDUCED",
	},
	heuristics: []heuristic{
		{"bts", "NEAR_BTS"},
		{"mrt", "NEAR_MRT"},
		{"beach", "NEAR_BEACH"},
		{"luxur", "LUXURY"},
		{"pet", "PET_FRIENDLY"},
		{"furnish", "FULLY_FURNISHED"},
		{"corner", "CORNER_UNIT"},
		{"highfloor", "HIGH_FLOOR"},
		{"reduc", "PRICE_REDUCED"},
		{"discount", "PRICE_REDUCED"},
		{"foreign", "FOREIGN_QUOTA"},
		{"invest", "INVESTMENT"},
		{"ready", "READY_TO_MOVE"},
	},
}

var labelTable = table{
	values: []string{
		"EXCLUSIVE", "FEATURED", "HOT_DEAL", "NEW_LISTING", "OPEN_HOUSE", "REDUCED", "SOLD_OUT",
	},
	aliases: map[string]string{
		"hot":  "HOT_DEAL",
		"new":  "NEW_LISTING",
		"sold": "SOLD_OUT",
	},
	heuristics: []heuristic{
		{"hot", "HOT_DEAL"},
		{"exclusive", "EXCLUSIVE"},
		{"featur", "FEATURED"},
		{"reduc", "REDUCED"},
		{"discount", "REDUCED"},
		{"sold", "SOLD_OUT"},
		{"openhouse", "OPEN_HOUSE"},
		{"new", "NEW_LISTING"},
	},
}

var nearbyTable = table{
	values: []string{
		"AIRPORT", "AIRPORT_LINK", "BEACH", "BTS_STATION", "HOSPITAL", "INTERNATIONAL_SCHOOL",
		"MARKET", "MRT_STATION", "PARK", "RESTAURANT", "SCHOOL", "SHOPPING_MALL", "SUPERMARKET",
		"UNIVERSITY",
	},
	aliases: map[string]string{
		"bts":    "BTS_STATION",
		"mrt":    "MRT_STATION",
		"mall":   "SHOPPING_MALL",
		"arl":    "AIRPORT_LINK",
		"clinic": "HOSPITAL",
	},
	heuristics: []heuristic{
		{"airportlink", "AIRPORT_LINK"},
		{"airport", "AIRPORT"},
		{"bts", "BTS_STATION"},
		{"skytrain", "BTS_STATION"},
		{"mrt", "MRT_STATION"},
		{"subway", "MRT_STATION"},
		{"mall", "SHOPPING_MALL"},
		{"shopping", "SHOPPING_MALL"},
		{"hospital", "HOSPITAL"},
		{"clinic", "HOSPITAL"},
		{"international", "INTERNATIONAL_SCHOOL"},
		{"school", "SCHOOL"},
		{"universit", "UNIVERSITY"},
		{"college", "UNIVERSITY"},
		{"supermarket", "SUPERMARKET"},
		{"market", "MARKET"},
		{"park", "PARK"},
		{"beach", "BEACH"},
		{"restaurant", "RESTAURANT"},
	},
}

func keysOf(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
