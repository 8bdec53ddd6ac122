package shopping

import "strings"

// CategoryOther catches everything no keyword matches.
const CategoryOther = "Other"

// categoryOrder fixes the display order of the built-in categories.
var categoryOrder = []string{
	"Produce", "Dairy", "Meat", "Fish", "Bakery", "Frozen",
	"Drinks", "Pantry", "Eggs", "Household", "Baby", "Pet", CategoryOther,
}

// categoryKeywords maps each built-in category to the substrings that
// assign an item to it. Matching is case-insensitive; the first category
// in display order with a matching keyword wins.
var categoryKeywords = map[string][]string{
	"Produce": {
		"apple", "banana", "orange", "lemon", "lime", "grape", "strawberry",
		"blueberry", "raspberry", "mango", "pear", "peach", "plum", "cherry",
		"melon", "pineapple", "kiwi", "avocado", "tomato", "potato", "onion",
		"garlic", "carrot", "broccoli", "cauliflower", "cabbage", "lettuce",
		"spinach", "kale", "cucumber", "pepper", "courgette", "zucchini",
		"aubergine", "mushroom", "celery", "leek", "sweetcorn", "corn", "peas",
		"beans", "asparagus", "beetroot", "parsnip", "radish", "ginger",
		"chilli", "herbs", "basil", "parsley", "coriander", "mint", "thyme",
	},
	"Dairy": {
		"milk", "cheese", "yogurt", "yoghurt", "butter", "cream",
		"mozzarella", "cheddar", "parmesan", "brie", "feta", "halloumi",
		"gouda", "custard",
	},
	"Meat": {
		"chicken", "beef", "pork", "lamb", "mince", "steak", "sausage",
		"bacon", "ham", "turkey", "duck", "venison", "gammon", "roast",
		"burger", "meatball",
	},
	"Fish": {
		"salmon", "cod", "haddock", "tuna", "mackerel", "sardine", "trout",
		"sea bass", "prawns", "shrimp", "crab", "lobster", "mussels",
		"squid", "fish fingers", "fish cake",
	},
	"Bakery": {
		"bread", "rolls", "baguette", "ciabatta", "sourdough", "pitta",
		"naan", "wrap", "tortilla", "croissant", "brioche", "bagel",
		"muffin", "scone", "crumpet", "pancake", "cake", "brownie",
		"cookie", "biscuit", "pastry", "pie", "tart", "doughnut",
	},
	"Frozen": {
		"frozen", "ice cream", "ice lolly", "ready meal", "sorbet", "gelato",
	},
	"Drinks": {
		"water", "juice", "squash", "cordial", "cola", "lemonade",
		"energy drink", "tea", "coffee", "hot chocolate", "beer", "wine",
		"cider", "gin", "vodka", "whisky", "rum", "prosecco", "smoothie",
	},
	"Pantry": {
		"pasta", "spaghetti", "penne", "rice", "noodles", "couscous",
		"quinoa", "flour", "sugar", "salt", "oil", "vinegar", "soy sauce",
		"ketchup", "mayonnaise", "mustard", "honey", "jam", "marmalade",
		"peanut butter", "cereal", "porridge", "oats", "muesli",
		"baked beans", "tinned tomatoes", "chopped tomatoes", "tomato puree",
		"coconut milk", "stock", "gravy", "soup", "crisps", "nuts",
	},
	"Eggs": {
		"eggs", "egg",
	},
	"Household": {
		"toilet paper", "kitchen roll", "tissues", "bin bags", "cling film",
		"foil", "baking paper", "washing up liquid", "dishwasher tablets",
		"laundry detergent", "fabric softener", "bleach", "surface cleaner",
		"sponge", "soap", "hand wash", "shampoo", "conditioner",
		"shower gel", "toothpaste", "deodorant",
	},
	"Baby": {
		"nappies", "diapers", "baby wipes", "baby food", "formula", "baby milk",
	},
	"Pet": {
		"dog food", "cat food", "pet food", "cat litter", "dog treats", "cat treats",
	},
}

// Categories returns the built-in category names in display order.
func Categories() []string {
	return append([]string(nil), categoryOrder...)
}

// CategorizeItem guesses a category from the item's name. Unrecognized
// names land in Other.
func CategorizeItem(name string) string {
	lower := strings.ToLower(name)
	for _, category := range categoryOrder {
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(lower, keyword) {
				return category
			}
		}
	}
	return CategoryOther
}

// NormalizeItemName produces the key used for duplicate detection.
func NormalizeItemName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
