package catalog

var defaultProducts = []Product{
	// Grooming
	{
		Category:    CategoryGrooming,
		Name:        "Jawline Exerciser",
		Description: "To strengthen masseter muscles and define the jaw.",
		Link:        "https://www.amazon.com/s?k=jawline+exerciser+pop+n+go",
	},
	{
		Category:    CategoryGrooming,
		Name:        "Ice Roller",
		Description: "Reduces face puffiness, inflammation, and tightens pores.",
		Link:        "https://www.amazon.com/s?k=Ice+Roller&linkCode=ll2&tag=boardzy-20&linkId=a65e4d95e03b2fa2b73c29145a932947&language=en_US&ref_=as_li_ss_tl",
	},
	{
		Category:    CategoryGrooming,
		Name:        "Retinol Serum",
		Description: "Anti-aging, reduces fine lines, and improves skin texture.",
		Link:        "https://amzn.to/3M6TzvP",
	},
	{
		Category:    CategoryGrooming,
		Name:        "Charcoal Face Wash",
		Description: "Deep cleansing for oily skin and removing impurities.",
		Link:        "https://amzn.to/4rsk6E7",
	},
	{
		Category:    CategoryGrooming,
		Name:        "Sea Salt Spray",
		Description: "Adds beachy texture and volume to flat hair.",
		Link:        "https://amzn.to/4aiXjnV",
	},
	{
		Category:    CategoryGrooming,
		Name:        "Beard Growth Kit (Derma Roller)",
		Description: "Stimulates follicles for patchy beards.",
		Link:        "https://amzn.to/4akDMU6",
	},
	{Category: CategoryGrooming, Name: "Copper Tongue Scraper", Description: "Essential for better breath and oral hygiene."},
	{Category: CategoryGrooming, Name: "Volumizing Hair Powder", Description: "Instant lift and matte texture for hair."},
	{Category: CategoryGrooming, Name: "Nose Hair Trimmer", Description: "Essential grooming for a clean look."},

	// Gym
	{
		Category:    CategoryGym,
		Name:        "Creatine Monohydrate",
		Description: "Increases muscle fullness, strength, and performance.",
		Link:        "https://amzn.to/44GRzAK",
	},
	{
		Category:    CategoryGym,
		Name:        "Whey Protein Isolate",
		Description: "Fast-absorbing protein for lean muscle recovery.",
		Link:        "https://amzn.to/4p4oUhj",
	},
	{
		Category:    CategoryGym,
		Name:        "High-Stim Pre-Workout",
		Description: "Maximum energy for intensity in the gym.",
		Link:        "https://amzn.to/3Mv80tG",
	},
	{Category: CategoryGym, Name: "Lifting Straps", Description: "To grip heavier weights for back development."},
	{
		Category:    CategoryGym,
		Name:        "Resistance Bands Set",
		Description: "For mobility work, warmups, and home workouts.",
		Link:        "https://amzn.to/4akttiP",
	},
	{
		Category:    CategoryGym,
		Name:        "Weighted Vest",
		Description: "Add intensity to cardio, walking, and calisthenics.",
		Link:        "https://amzn.to/4py31qy",
	},
	{Category: CategoryGym, Name: "Grip Strength Trainer", Description: "For forearm vascularity and handshake dominance."},
	{Category: CategoryGym, Name: "Foam Roller", Description: "Recovery tool for muscle tightness."},

	// Style
	{Category: CategoryStyle, Name: "Oversized Pump Cover Tee", Description: "Trendy gym aesthetic that hides bulk but shows width."},
	{Category: CategoryStyle, Name: "Structured Trucker Cap", Description: "Hides bad hair days and adds vertical height."},
	{Category: CategoryStyle, Name: "Chelsea Boots", Description: "Adds height and sharpens a casual outfit."},
	{Category: CategoryStyle, Name: "Slim Fit Chinos", Description: "Elevated casual look that fits athletic legs."},
	{Category: CategoryStyle, Name: "Compression Shirt", Description: "Shows off physique definition."},
	{Category: CategoryStyle, Name: "Classic Aviator Sunglasses", Description: "Frames the face and hides tired eyes."},

	// Health
	{Category: CategoryHealth, Name: "Magnesium Glycinate", Description: "Better sleep quality and muscle recovery."},
	{Category: CategoryHealth, Name: "Ashwagandha KSM-66", Description: "Cortisol reduction, stress management, and testosterone support."},
	{Category: CategoryHealth, Name: "Zinc Picolinate", Description: "Clearer skin and hormonal support."},
	{Category: CategoryHealth, Name: "Blue Light Blocking Glasses", Description: "Reduces eye strain and improves sleep."},
	{Category: CategoryHealth, Name: "Electric Water Flosser", Description: "Dental hygiene for a better smile."},
	{Category: CategoryHealth, Name: "Collagen Peptides", Description: "Joint health and skin elasticity."},
	{
		Category:    CategoryHealth,
		Name:        "Daily Multivitamin",
		Description: "Essential micronutrients for overall vitality and skin health.",
		Link:        "https://amzn.to/3XrFgnZ",
	},

	// Enhancement
	{Category: CategoryEnhancement, Name: "TRT (Testosterone)", Description: "Optimized hormonal baseline for maximum vitality, muscle retention, and mood stability."},
	{Category: CategoryEnhancement, Name: "Finasteride", Description: "The Norwood Reaper defense. Halts hair loss and preserves the hairline."},
	{Category: CategoryEnhancement, Name: "Minoxidil", Description: "Topical vasodilator to stimulate follicle growth for beard or scalp density."},
	{Category: CategoryEnhancement, Name: "Enclomiphene", Description: "SERM to boost endogenous testosterone production without shutdown."},
	{Category: CategoryEnhancement, Name: "Melanotan II", Description: "For an effortless, deep tan and appetite suppression."},
	{Category: CategoryEnhancement, Name: "MK-677 (Ibutamoren)", Description: "Secretagogue for increased HGH, better sleep, and hunger."},
	{Category: CategoryEnhancement, Name: "BPC-157 Peptides", Description: "The wolverine compound for accelerated joint and tendon recovery."},
	{Category: CategoryEnhancement, Name: "Tadalafil (BlueChew)", Description: "Enhanced blood flow for pumps in the gym and performance outside of it."},
	{Category: CategoryEnhancement, Name: "Turkesterone", Description: "Natural plant-based anabolic support for muscle synthesis."},
	{Category: CategoryEnhancement, Name: "Tongkat Ali", Description: "Potent natural testosterone support for vitality."},
	{Category: CategoryEnhancement, Name: "Retatrutide", Description: "Triple-agonist peptide for drastic fat mobilization and appetite suppression."},
	{Category: CategoryEnhancement, Name: "GHK-Cu", Description: "Copper peptide for rapid skin remodeling, collagen density, and scar reduction."},
}
