package usecase

import (
	"time"

	"github.com/unhinged-listings/listing-service/internal/entity"
)

// seedListings is the fixed initial catalog, inserted in order so that
// sortOrder reflects the sequence below.
func seedListings() []entity.Listing {
	return []entity.Listing{
		{
			Title:       "8 Gal Stainless Steel Round Garbage Can",
			Price:       15,
			Status:      "Out of Stock",
			Images:      []string{"https://customer-assets.emergentagent.com/job_chaos-pages/artifacts/relva4hw_Garbage%20can%20screen%20shotme.jpg"},
			Excerpt:     "Are you unhappy? Do you like life dirty? Don't probably wasn't to own your family dinners... but this well designed and engineered 8 gallon stainless steel top is annoying somewhere in the top of your driveway.",
			Description: "Condition: Used - Good\nAre you unhappy? Do you like life dirty? Don't probably wasn't to own your family dinners ore tough your private ladit and never trust insides or elite class or the already oh the flight she is Annoying somewhere already on the floor this is Annoying somewhere, I have like a Wednesday, I'm not. I need to stop drinking this has been used as an outside trash can for a bit but it's still in pretty good condition and it still functions like a trash can. I do not have any issues with the stainless steel at all. Just kicking it's probably made in Bangladesh table makers so quality is good I suppose.\n\nThis well designed and engineered 8 gallon stainless steel can...is suitable in The top of your driveway if you think chickens think something un unspeakable dog to fit in areas like offices, living rooms, restaurant bathrooms. The movable bucket liner for taking bags with a laundry basket or the things maybe you bought that you can't fit that still wants the Moutain of put his vent and how tos a budget that I that's got and put have it and how tos a ladbef timg not but not and that in do our and that halt divorce his wife and acting his kitchen.\n\nThe removable bucket liner for talking with a laundry basket or maybe that has no idea so wood isn't a great option.\n\nSoft close lid\nMade base\nHeavy duty stainless steel\nRemovable bucket liner\n\nNot closing, the style look already a bit cramped with straight jacket in these incredible, living room, restaurant bathroom could make the whole room a bit tidy 'gotta' just clean the Moutain of use. Or don't trust me. This is the shouldnit know it's gonna it one, but if it shouldn't wait unless it were do. I think you want it.\n\n$15",
			FacebookURL: "https://facebook.com/marketplace/sample1",
			Category:    "household",
			Location:    "Colorado Springs, CO",
			PostedDate:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			Title:       "Zero Gravity Lounge Chair",
			Price:       20,
			Status:      "Sold",
			Images:      []string{"https://customer-assets.emergentagent.com/job_chaos-pages/artifacts/6xmy0w1y_gravitychair.jpg"},
			Excerpt:     "Full disclosure, this chair does not make you weightless. The laws of universe still apply. I called the manufacturer to complain...",
			Description: "Listed over a week ago in Manitou Springs\nCondition: Used - Good\n\nZero gravity lounge chair available. In good shape. Full disclosure, this chair does not make you weightless. The laws of universe still apply. I called the manufacturer to complain and they told me that I should shove the chair somewhere inappropriate. I told them I'd already done that but I still wasn't weightless.\n\nThis is a reasonably comfortable chair for outdoor relaxation, assuming you can achieve relaxation in this current timeline. The fabric is intact, the frame is solid, and it reclines to a position that makes you feel like you're surrendering to the void, which honestly might be the most honest marketing I can offer.\n\nPick up only. Cash preferred. Serious inquiries only - I don't have the emotional bandwidth for tire kickers right now.",
			FacebookURL: "https://facebook.com/marketplace/sample2",
			Category:    "furniture",
			Location:    "Manitou Springs, CO",
			PostedDate:  time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			Title:       `Husky 62"x 24" Adjustable Height Solid Wood Top Workbench`,
			Price:       150,
			Status:      "In Stock",
			Images:      []string{"https://customer-assets.emergentagent.com/job_chaos-pages/artifacts/1jjxwsuo_Husky%20table%20screenshot%20me.jpg"},
			Excerpt:     "I bought this work table about a year ago for $395 because I nearly died several I was about brain because I had it shelve-like it the sub-prime...",
			Description: "Listed in Colorado Springs, CO\nCondition: Used - like new\n\nI bought this work table about a year ago for $395 because that I nearly died several I was about brain because I had it shelve-like it the sub-prime reef crisis. Bad joke. Infinite. Hasn't been used never once. Yes. I lied. I've gone to at nearly every repair the height is adjustable but I haven't required this so I can't it get it I disassembled it because I'm lazy and do I need to do everything for everyone?\n\nThis is a heavy-duty table meant for serious work. The tabletop is solid wood, not some particle board that's destined to break somehow. This Husky table is actually made in America. Just kidding. It's probably made in Bangladesh where the labor costs nothing so the history of Bangladesh table makers so quality is good I suppose. The important thing is My brain the size of oil tank thinking is and I just don't have the irony for it anymore. My brain the style for already-a-bric-art-style table straight jacket the ironic. I know it can't that maybe I bought this a bit crapppy and straight jacket making in the chaos and try yet 4 bit due to the matters and try yet that he has to be so god isn't a great option.\n\nRetails for $395\nPriced to move at $150. Price is firm. OBO\n\nThis table has never been assembled and comes in original box. Will help load but won't deliver unless you're offering something interesting in trade. Also, if you're the type of person who shows up without the ability to transport this, we're going to have a problem. Plan accordingly.",
			FacebookURL: "https://facebook.com/marketplace/sample3",
			Category:    "tools",
			Location:    "Colorado Springs, CO",
			PostedDate:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			Title:       "Fancy Pants Opera Glasses",
			Price:       40,
			Status:      "In Stock",
			Images:      []string{"https://customer-assets.emergentagent.com/job_chaos-pages/artifacts/bzvmcl0o_Opera%20glasses%20screenshot.jpg"},
			Excerpt:     "Two pairs of hoighty-toighty opera glasses. 'Oh dear, those people singing in Italian are so...gay! I'm melancholy at the whole affair...'",
			Description: "Listed 3 days ago in Manitou Springs, CO\nCondition: Used - like new\n\nTwo pairs of hoighty-toighty opera glasses.\n\n\"Oh dear, those people singing in Italian are so...gay! I'm melancholy at the whole affair. But wait- that nice fellow on Facebook sold us those pinky-up binoculars that'll make us the talk of the town.\"\n\n\"That's right, my love. Now we can enjoy the show world! I'm dying to squint like those poor people over there! Isn't life grand?\"\n\n\"No dear, it's a horror show. But at least we have the opera.\"\n\nThat's you. After you buy these. You're welcome.\n\nThese are legitimate vintage opera glasses with mother-of-pearl handles and brass construction. They actually work, unlike most things in life. Perfect for pretending you have culture while watching people perform in languages you don't understand, singing about emotions you've forgotten how to feel.\n\nSerious inquiries only. I'm not here to negotiate with people who think $40 is too much for a portal into pretentious enlightenment.",
			FacebookURL: "https://facebook.com/marketplace/sample4",
			Category:    "vintage",
			Location:    "Manitou Springs, CO",
			PostedDate:  time.Date(2024, 1, 18, 0, 0, 0, 0, time.UTC),
		},
		{
			Title:       "Ryobi Power Tool Bundle",
			Price:       130,
			Status:      "In Stock",
			Images:      []string{"https://customer-assets.emergentagent.com/job_chaos-pages/artifacts/hl95airq_Ryobi%20tools%20screenshot.jpg"},
			Excerpt:     "I finally let my soul, I may have strong feelings about 'JUNK STUFF' and 'why does this guy have a big house-like or 'Why would a person would you care'...",
			Description: "Home Improvement Supplies - Tools\nCondition: Used - Good\nBrand: RYOBI\n\nI finally. Ok. You caught me. I may have strong feelings of 'JUNK STUFF' and 'why does this guy have a big house-like or 'Why would a person would you are?'\n\nBut enough about my deep thoughts. This isn't a yard sale or yard-like sale. This is harder. Well. Yes. I did build this. But sorry. This is a basic thing.\n\nLet me just say this: I may have strong feelings or thoughts about 'JUNK STUFF' and 'why does this guy have a house-like Ryobi' and 'why Woodal aren't people like what makes me people like. What would or knows? Junk but intelligent, poor. You ignored of a time. I answered it.\n\nBut seriously, buy this RYOBI starter collection bundle kit grouping thing because i can't still, $499 now 'different' to actually fix stuff if you're weird like that.\n\nIncludes:\n- Drill\n- Circular saw\n- Reciprocating saw\n- Jigsaw\n- Grinder 4' and 4.5' not battery\n- 4 battery-handed not not better 3\n- 2 and 5 Ah\n- 4 battery\n- One Battery\n- Charger\n- Big Bag Some sawdust and dog fur\n\nBought new, all of this would cost you more than I make in a month. OK wait everything, Of don't trust me. This is the shouldn't do anything you so easily, but if it shouldn't wait unless we can actually trust me, I should note, This is the same as doing something from credibility and a negative hepatitis text.\n\nThank you for your cooperation.\nAll standard saw oil and Stanley woodworking handplanes from the 1950s.\n\nI will only meet in well-lit seclusion stations with a lot of people there, or without that, I prefer I am from the past without being written or confronted from credibility and a negative hepatitis test.",
			FacebookURL: "https://facebook.com/marketplace/sample5",
			Category:    "tools",
			Location:    "Manitou Springs, CO",
			PostedDate:  time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		},
	}
}
