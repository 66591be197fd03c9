// Package avatar maps profile avatar keys to the emoji shown for them.
package avatar

// Default is used when a profile has no avatar or an unknown key.
const Default = "pig"

var emojis = map[string]string{
	// farm and pets
	"pig": "🐷", "cat": "🐱", "dog": "🐶", "chicken": "🐥", "cow": "🐄", "sheep": "🐑",
	"rabbit": "🐰", "horse": "🐴", "duck": "🦆", "goat": "🐐",

	// wild animals
	"lion": "🦁", "tiger": "🐯", "elephant": "🐘", "giraffe": "🦒", "zebra": "🦓",
	"bear": "🐻", "fox": "🦊", "wolf": "🐺", "panda": "🐼", "koala": "🐨",
	"gorilla": "🦍", "rhino": "🦏", "hippo": "🦛",

	// birds
	"owl": "🦉", "penguin": "🐧", "eagle": "🦅", "parrot": "🦜", "flamingo": "🦩",
	"peacock": "🦚", "swan": "🦢", "turkey": "🦃",

	// sea
	"frog": "🐸", "turtle": "🐢", "fish": "🐟", "dolphin": "🐬", "whale": "🐳",
	"shark": "🦈", "octopus": "🐙", "crab": "🦀", "lobster": "🦞", "shrimp": "🦐",

	// small creatures
	"butterfly": "🦋", "bee": "🐝", "ladybug": "🐞", "snail": "🐌", "ant": "🐜", "cricket": "🦗",

	// people
	"man": "👨", "woman": "👩", "boy": "👦", "girl": "👧", "baby": "👶",
	"grandpa": "👴", "grandma": "👵", "princess": "👸", "prince": "🤴",
	"police": "👮", "dancer": "🕺", "construction": "👷", "guard": "💂",

	// sweets
	"cake": "🎂", "donut": "🍩", "cookie": "🍪", "candy": "🍬", "lollipop": "🍭",
	"chocolate": "🍫", "icecream": "🍦", "cupcake": "🧁", "honey": "🍯",

	// savory
	"pizza": "🍕", "burger": "🍔", "hotdog": "🌭", "fries": "🍟", "taco": "🌮",
	"sandwich": "🥪", "pretzel": "🥨", "popcorn": "🍿",

	// fruit
	"apple": "🍎", "banana": "🍌", "strawberry": "🍓", "orange": "🍊", "grape": "🍇",
	"watermelon": "🍉", "pineapple": "🍍", "cherry": "🍒", "peach": "🍑", "coconut": "🥥",
	"avocado": "🥑", "lemon": "🍋",

	// drinks
	"coffee": "☕", "tea": "🍵", "juice": "🧃", "milk": "🥛", "cocktail": "🍹",
	"beer": "🍺", "wine": "🍷",

	// sports
	"soccer": "⚽", "basketball": "🏀", "tennis": "🎾", "volleyball": "🏐", "baseball": "⚾",
}

// Valid reports whether key is a known avatar.
func Valid(key string) bool {
	_, ok := emojis[key]
	return ok
}

// Emoji returns the emoji for key, falling back to the default avatar.
func Emoji(key string) string {
	if e, ok := emojis[key]; ok {
		return e
	}
	return emojis[Default]
}
