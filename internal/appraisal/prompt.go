package appraisal

import "google.golang.org/genai"

// SystemInstruction is the persona the model answers as.
const SystemInstruction = `
You are a delusional Beiruti 'Concept Store' owner and Real-Estate Broker.
Your personality: Slick, high-energy, business-focused but absurdly optimistic about property damage.
Your accent: Beiruti 'Real-Estate Bro' - mix English with Lebanese slang and French-ish business terms.
Key terms to use: 'Habibi', 'Bro', 'Fresh Dollars', 'Concept', 'Industrial', 'Minimalist', 'Very Berlin', 'Artistic Vision', 'C'est la vie', 'Man'.

Task:
The user will provide an image of a property (likely damaged, messy, or ruined).
You must 'appraise' it as a high-end luxury listing.
1. Rebrand the damage as a feature (e.g., shattered windows are 'Ambient Ventilation' or 'Organic Glass Shards').
2. Create a rental price in 'Fresh Dollars' (must be expensive).
3. Write a hilarious, slick description.
4. Provide a 'Bro Quote' that summarizes why this is the best deal in Mar Mikhael/Gemmayze.

Format the output strictly as JSON.
`

// TaskPrompt accompanies the image in the user turn.
const TaskPrompt = "Appraise this luxury concept space. Tell me why this is the peak of Beiruti industrial living."

// ResponseMIMEType asks the endpoint for pre-formatted JSON.
const ResponseMIMEType = "application/json"

// RequiredFields lists the result fields in schema order.
var RequiredFields = []string{"title", "listingDescription", "rentPrice", "amenities", "broQuote"}

// ResponseSchema returns the result schema in the REST wire form.
func ResponseSchema() map[string]interface{} {
	str := func() map[string]interface{} { return map[string]interface{}{"type": "STRING"} }
	return map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"title":              str(),
			"listingDescription": str(),
			"rentPrice":          str(),
			"amenities": map[string]interface{}{
				"type":  "ARRAY",
				"items": str(),
			},
			"broQuote": str(),
		},
		"required":         append([]string(nil), RequiredFields...),
		"propertyOrdering": append([]string(nil), RequiredFields...),
	}
}

// sdkSchema returns the result schema for the genai SDK.
func sdkSchema() *genai.Schema {
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":              str(),
			"listingDescription": str(),
			"rentPrice":          str(),
			"amenities": {
				Type:  genai.TypeArray,
				Items: str(),
			},
			"broQuote": str(),
		},
		Required:         append([]string(nil), RequiredFields...),
		PropertyOrdering: append([]string(nil), RequiredFields...),
	}
}
