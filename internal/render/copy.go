package render

// Copy shared by the web page and the terminal surfaces.
const (
	Brand            = "GLA$$ & GOLD"
	Tagline          = "The Deconstructed Living Experience | Mar Mikhael • Gemmayze • Berlin"
	UploadHeading    = "Upload Your Distressed Space"
	UploadSubheading = `Turn your "Bro, what happened here?" into "Habibi, what a concept!"`
	PrivacyHeading   = "Protocol: Off-the-books Confidentiality"
	PrivacyBody      = "BRO, IT'S SOUS-LA-TABLE: Your 'concept' is processed on this machine and sent only to the appraisal model. " +
		"No database, no paper trail for the authorities. Very Swiss. Very discreet. Very tax-free."
	PortfolioHeading = "Active Portfolio"
	LoadingHeading   = `Analyzing the "Concept", Habibi...`
	LoadingBody      = `Just adding the "Fresh" premium. Very Berlin. Very industrial. Almost done, bro.`
	AgentStatus      = `Agent Online: Elie "Fresh" Mansour`
	NewDeal          = "New Deal"
)

// DateLayout formats card dates.
const DateLayout = "Jan 2, 2006"
