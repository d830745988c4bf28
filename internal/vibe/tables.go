package vibe

// DefaultTables returns a fresh copy of the built-in vocabulary.
func DefaultTables() Tables {
	return Tables{
		Anchors: map[string][]string{
			"celebrations":                {"balloons", "confetti", "streamers", "gift boxes"},
			"celebrations.birthday party": {"cake", "candles", "balloons", "party hats", "gift boxes"},
			"celebrations.birthday":       {"cake", "candles", "balloons", "party hats"},
			"celebrations.christmas":      {"tree", "ornaments", "stockings", "tinsel", "cocoa"},
			"celebrations.new year":       {"fireworks", "champagne", "countdown clock", "glitter"},
			"celebrations.wedding":        {"bouquet", "rings", "tiered cake", "string lights"},
			"celebrations.graduation":     {"caps", "diplomas", "tassels", "balloons"},
			"celebrations.halloween":      {"pumpkins", "candy corn", "cobwebs", "lanterns"},
			"celebrations.anniversary":    {"roses", "candles", "champagne", "photo frames"},
			"celebrations.baby shower":    {"onesies", "cupcakes", "rattles", "pastel balloons"},
			"celebrations.retirement":     {"hammock", "fishing rod", "golf bag", "calendar"},

			"sports":               {"stadium lights", "scoreboard", "water bottles", "trophy"},
			"sports.hockey":        {"ice rink", "puck", "hockey stick", "goal net", "skates"},
			"sports.basketball":    {"hoop", "basketball", "hardwood court", "scoreboard"},
			"sports.soccer":        {"soccer ball", "goal posts", "grass pitch", "corner flag"},
			"sports.football":      {"football", "goal posts", "yard lines", "helmets"},
			"sports.baseball":      {"bat", "glove", "diamond", "bases"},
			"sports.tennis":        {"tennis racket", "tennis balls", "net", "clay court"},
			"sports.golf":          {"golf ball", "putting green", "flagstick", "golf cart"},
			"sports.skateboarding": {"skateboard", "half pipe", "rail", "ramp"},
			"sports.running":       {"sneakers", "finish line", "water cups", "race bib"},

			"daily life":                  {"coffee mug", "alarm clock", "sticky notes", "laundry pile"},
			"daily life.monday":           {"alarm clock", "coffee mug", "calendar", "traffic"},
			"daily life.coffee":           {"espresso cup", "latte art", "coffee beans", "french press"},
			"daily life.commute":          {"bus stop", "headphones", "traffic", "subway map"},
			"daily life.gym":              {"dumbbells", "yoga mat", "protein shaker", "treadmill"},
			"daily life.cooking":          {"frying pan", "cutting board", "spice jars", "smoke alarm"},
			"daily life.work from home":   {"laptop", "sweatpants", "houseplant", "video call"},
			"daily life.weekend":          {"hammock", "pancakes", "sunglasses", "couch"},
			"animals":                     {"leash", "food bowl", "squeaky toy", "cozy bed"},
			"animals.cats":                {"cardboard box", "yarn ball", "laser dot", "food bowl"},
			"animals.dogs":                {"tennis ball", "leash", "chew toy", "muddy paws"},
			"vibes & punchlines":          {"neon sign", "disco ball", "rubber duck", "traffic cone"},
			"pop culture":                 {"popcorn", "red carpet", "movie tickets", "vinyl records"},
			"pop culture.movies":          {"popcorn", "movie tickets", "film reel", "velvet seats"},
			"pop culture.music":           {"vinyl records", "guitar", "microphone", "stage lights"},
			"seasonal":                    {"falling leaves", "snowflakes", "sunflowers", "umbrella"},
			"seasonal.summer":             {"beach towel", "ice pops", "sunscreen", "pool float"},
			"seasonal.winter":             {"snowflakes", "mittens", "hot cocoa", "sled"},
			"work":                        {"stapler", "sticky notes", "spreadsheet", "coffee mug"},
			"work.meetings":               {"whiteboard", "conference table", "donuts", "projector"},
			"travel":                      {"suitcase", "passport", "boarding pass", "map"},
			"travel.road trip":            {"road map", "snacks", "gas station", "open highway"},
			"food":                        {"pizza", "tacos", "hot sauce", "takeout boxes"},
			"food.pizza":                  {"pizza box", "pepperoni", "melted cheese", "pizza cutter"},
			"holidays":                    {"wreath", "lanterns", "gift boxes", "string lights"},
			"holidays.valentines day":     {"roses", "chocolates", "heart balloons", "love letters"},
			"holidays.st patricks day":    {"shamrocks", "gold coins", "rainbow", "green hats"},
			"holidays.thanksgiving":       {"turkey", "pumpkin pie", "cornucopia", "gravy boat"},
			"holidays.fourth of july":     {"fireworks", "sparklers", "flags", "grill"},
		},
		GenericAnchors: []string{"spotlight", "confetti", "balloons"},

		Actions: map[string][]Action{
			"celebrations": {
				{Verb: "blow", Phrase: "blowing out candles beside the %s"},
				{Verb: "raise", Phrase: "raising a glass next to the %s"},
				{Verb: "dance", Phrase: "dancing around the %s"},
			},
			"sports": {
				{Verb: "run", Phrase: "running past the %s"},
				{Verb: "jump", Phrase: "jumping high over the %s"},
				{Verb: "shoot", Phrase: "shooting toward the %s"},
			},
			"sports.hockey": {
				{Verb: "skate", Phrase: "skating hard across the %s"},
				{Verb: "shoot", Phrase: "shooting a puck past the %s"},
			},
			"sports.basketball": {
				{Verb: "jump", Phrase: "jumping for a dunk near the %s"},
				{Verb: "shoot", Phrase: "shooting a free throw by the %s"},
			},
			"sports.skateboarding": {
				{Verb: "skate", Phrase: "skating down the %s"},
				{Verb: "spin", Phrase: "spinning a kickflip over the %s"},
			},
			"daily life": {
				{Verb: "hold", Phrase: "holding the %s like a trophy"},
				{Verb: "walk", Phrase: "walking past the %s"},
			},
			"animals": {
				{Verb: "throw", Phrase: "throwing a treat toward the %s"},
				{Verb: "walk", Phrase: "walking beside the %s"},
			},
			"holidays": {
				{Verb: "spray", Phrase: "spraying glitter over the %s"},
				{Verb: "cheer", Phrase: "cheering beside the %s"},
			},
			"pop culture": {
				{Verb: "toast", Phrase: "toasting in front of the %s"},
				{Verb: "dance", Phrase: "dancing next to the %s"},
			},
		},
		GenericActions: []Action{
			{Verb: "cheer", Phrase: "cheering next to the %s"},
			{Verb: "hold", Phrase: "holding up the %s"},
			{Verb: "walk", Phrase: "walking past the %s"},
		},
		ExtraVerbs: []string{"toast", "wave", "hug", "laugh", "pop", "catch", "kick", "swing", "ride", "swim", "bake", "pour", "lift", "blew", "threw", "ran", "held"},

		BaseNegative: "no watermark, no logo, no extra text, no distorted hands, no blurry faces",
		Negatives: map[string]string{
			"sports":       "no laptops, no desks, no coffee mugs, no office props, no empty stands",
			"celebrations": "no on-image lettering, no banners with words, no numbers on cakes",
			"holidays":     "no on-image lettering, no brand names on gifts",
			"daily life":   "no stock photo poses, no glossy ad lighting",
			"animals":      "no extra limbs, no mismatched eyes",
			"work":         "no readable screens, no corporate logos",
			"pop culture":  "no real celebrity likeness, no trademarked characters",
		},

		Tones: map[string]string{
			"humorous":      "Light, witty and observational. Land the joke on a concrete detail, not a pun on the topic word.",
			"savage":        "Roast with affection: blunt, specific, a little mean, never cruel about identity or looks.",
			"sentimental":   "Warm and sincere. Specific memories over big adjectives, no greeting card filler.",
			"nostalgic":     "Wistful and specific: old habits, small objects, the way things used to be.",
			"romantic":      "Tender and playful. Small gestures over grand declarations.",
			"inspirational": "Upbeat and grounded. Concrete effort, not slogans.",
			"playful":       "Silly, bouncy, a little absurd, safe for kids.",
			"serious":       "Calm and direct. Understated, no jokes.",
			"wholesome":     "Kind and cozy. Gentle humor, nobody is the butt of the joke.",
			"sarcastic":     "Dry and deadpan. Say the opposite with a straight face.",
		},
		GenericTone: "Friendly and clever. Concrete details, short sentences, no filler.",
		ToneMoods: map[string]string{
			"humorous":      "chaotic",
			"savage":        "ruthless",
			"sentimental":   "tender",
			"nostalgic":     "vintage",
			"romantic":      "starry",
			"inspirational": "fearless",
			"playful":       "silly",
			"serious":       "steady",
			"wholesome":     "cozy",
			"sarcastic":     "legendary",
		},

		Cliches: []string{
			"another trip around the sun",
			"age is just a number",
			"living my best life",
			"living your best life",
			"level up",
			"game changer",
			"no cap",
			"it's giving",
			"vibes only",
			"wine o'clock",
			"adulting is hard",
			"forever young",
			"keep calm",
			"yolo",
			"slay",
			"squad goals",
			"the struggle is real",
			"best day ever",
			"main character energy",
			"on fleek",
			"hold my beer",
			"netflix and chill",
		},

		PersonWords: []string{
			"person", "persons", "people", "man", "men", "woman", "women",
			"guy", "guys", "girl", "girls", "boy", "boys", "kid", "kids",
			"child", "children", "someone", "somebody", "friend", "friends",
			"crowd", "athlete", "player", "players", "fan", "fans",
			"he", "she", "him", "her", "his", "hers", "himself", "herself",
		},
		SingularWords: []string{
			"person", "man", "woman", "guy", "girl", "boy", "kid", "child",
			"athlete", "player", "someone",
		},
		GroupWords: []string{
			"people", "group", "friends", "team", "crowd", "family", "guests", "crew", "squad",
		},
		CreativeWords:        []string{"symbolic", "abstract"},
		LenientCreativeWords: []string{"arrangement", "metaphor", "metaphorical", "surreal"},
		StyleWords: []string{
			"realistic", "photorealistic", "hyperrealistic", "photo-realistic",
			"anime", "manga", "cartoon", "cartoonish", "3d", "3-d", "cgi",
			"render", "rendered", "illustrated", "illustration", "watercolor",
			"oil painting", "pixel art", "sketch", "comic", "vector art",
			"claymation", "digital art", "unreal engine", "octane",
		},
	}
}
