package entity

import "time"

// Category is one entry of the site's category list. The "all" pseudo-category
// is part of the list and means "no filter" to the API.
type Category struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// SiteSettings is the singleton settings document. Any field missing from the
// stored document falls back to the default value on read. Fields marshal to
// bson without omitempty so an explicitly cleared value is written through
// rather than keeping the old stored one.
type SiteSettings struct {
	SiteTitle         string     `json:"siteTitle" bson:"siteTitle"`
	Subtitle          string     `json:"subtitle" bson:"subtitle"`
	Tagline           string     `json:"tagline" bson:"tagline"`
	Description       string     `json:"description" bson:"description"`
	Categories        []Category `json:"categories" bson:"categories"`
	SafetyTips        string     `json:"safetyTips" bson:"safetyTips"`
	FooterText        string     `json:"footerText" bson:"footerText"`
	FooterLinks       string     `json:"footerLinks" bson:"footerLinks"`
	AboutTitle        string     `json:"aboutTitle" bson:"aboutTitle"`
	AboutIntro        string     `json:"aboutIntro" bson:"aboutIntro"`
	AboutProcess      string     `json:"aboutProcess" bson:"aboutProcess"`
	AboutQuote        string     `json:"aboutQuote" bson:"aboutQuote"`
	AboutQuoteSource  string     `json:"aboutQuoteSource" bson:"aboutQuoteSource"`
	AboutPhilosophy   string     `json:"aboutPhilosophy" bson:"aboutPhilosophy"`
	AboutAuthenticity string     `json:"aboutAuthenticity" bson:"aboutAuthenticity"`
	AboutWarning      string     `json:"aboutWarning" bson:"aboutWarning"`
	ContactText       string     `json:"contactText" bson:"contactText"`
	UpdatedAt         time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// DefaultSiteSettings returns the baked-in site copy used until the operator
// saves their own through the admin panel.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		SiteTitle:   "unhinged listings",
		Subtitle:    "colorado springs > for sale / wanted > general for sale",
		Tagline:     "where mundane commerce meets existential dread",
		Description: "real items for sale, written through the lens of late-stage capitalism and fourth-wall-breaking nihilism",
		Categories: []Category{
			{ID: "all", Name: "All Listings"},
			{ID: "household", Name: "Household Items"},
			{ID: "furniture", Name: "Furniture"},
			{ID: "tools", Name: "Tools & Equipment"},
			{ID: "vintage", Name: "Vintage & Collectibles"},
		},
		SafetyTips:        "meet in public places\ndon't wire money\navoid offers that seem too good\nbeware of existential dread",
		FooterText:        "unhinged listings | all rights reserved to question reality through commerce",
		FooterLinks:       "help | safety | privacy | feedback | craigslist blog | best of craigslist | existential crisis support",
		AboutTitle:        "About Unhinged Listings",
		AboutIntro:        "This is an ongoing performance art piece disguised as classified ads. Each listing starts as a real item for sale from my actual home, but transforms into absurdist literature that questions the nature of consumer culture, late-stage capitalism, and the commodification of our lives.",
		AboutProcess:      "Find real item to sell from my home\nStart writing \"normal\" classified ad\nLet nihilistic stream-of-consciousness take over\nBreak fourth wall, question existence\nPost to Facebook Marketplace as functional ad\nArchive here as art piece",
		AboutQuote:        "Full disclosure, this chair does not make you weightless. The laws of universe still apply. I called the manufacturer to complain and they told me that I should shove the chair somewhere inappropriate. I told them I'd already done that but I still wasn't weightless.",
		AboutQuoteSource:  "From the Zero Gravity Chair listing",
		AboutPhilosophy:   "What if classified ads were honest? What if they revealed not just the condition of our possessions, but the condition of our souls? Through intentional existential spirals and absurdist descriptions, these \"ads\" become literature that questions why we buy, why we sell, and why we pretend any of this makes sense.",
		AboutAuthenticity: "All items are real and actually for sale. The Facebook Marketplace links lead to the live ads (when active). Some sell, some don't, but all serve as both functional commerce and performance art. The unhinged descriptions are posted exactly as written to actual buyers on Facebook Marketplace.",
		AboutWarning:      "Reading these listings may cause existential questioning about the nature of capitalism, the meaning of ownership, and why we accumulate objects only to eventually sell them to strangers on the internet.",
		ContactText:       "Serious inquiries only. Cash preferred. Must be able to handle existential conversations about the nature of commerce.",
	}
}
