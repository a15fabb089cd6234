package analyzer

// DepartmentsOfficers is the fixed department→officer roster embedded into
// the enrichment prompt. The AI must choose department and officer from this
// list only.
const DepartmentsOfficers = `
IT Department:
- Aayush Pradhan
- Kinley Bhutia

Land Revenue & Disaster Management Department:
- Dawa Tshering Bhutia
- Pema Dorjee Lepcha

Road and Bridges Department:
- Mingma Sherpa
- Tashi Lepcha

Education Department:
- Dolma Bhutia
- Sonika Chettri

Forest & Environment Department:
- Lobsang Bhutia
- Nima Sherpa

Social Welfare Department:
- Pema Lhamu Bhutia
- Tashi Deki Lepcha

Rural Development Department:
- Ramesh Chhetri
- Pem Dorjee Sherpa

Excise Department:
- Karma Bhutia
- Sonam Lepcha
`

const classifySystemInstruction = `You are a strict government complaint classifier. Reject anything that isn't a specific complaint about public services. Be conservative.`

const classifyPromptTemplate = `
Is this a complaint about public services or infrastructure?
Use semantic understanding to identify complaints about:
- Roads, water, electricity, buildings
- Government services, permits, offices
- Public facilities, hospitals, schools

Text: "%s"
Answer only "true" or "false":
`

const enrichSystemInstruction = `You are an expert at analyzing complaints and extracting location information using grammatical patterns and semantic context.`

const enrichPromptTemplate = `
Analyze this complaint and extract information including location details:

COMPLAINT: "%s"

Look for:
1. Priority (1-5 scale):
   5 = Life-threatening emergency (safety hazards, medical emergencies)
   4 = Critical infrastructure failure (major roads, essential services)
   3 = Significant service disruption (affecting many people)
   2 = Standard service issues (delays, quality problems)
   1 = Minor issues or suggestions
2. Relevant department from the list below
3. Recommended officer
4. LOCATION extraction using grammar patterns:
   - "in [place]" - incident location
   - "at [place]" - service location
   - "near [landmark]" - reference point
   - "on [road/street]" - infrastructure location
5. Sentiment and urgency analysis

Departments and Officers:
%s

Respond with a single JSON object and nothing else:
{
  "priority_score": 1-5,
  "department": "department name",
  "recommended_officer": "officer name",
  "location_analysis": {
    "primary_location": "main location mentioned",
    "extraction_method": "grammatical pattern used",
    "confidence": 1-100,
    "location_type": "village|town|district|landmark|road",
    "context": "how location was mentioned"
  },
  "ai_analysis": {
    "sentiment": "angry|frustrated|concerned|urgent|neutral",
    "urgency_level": "low|medium|high",
    "category": "infrastructure|utilities|permits|healthcare|education|transportation|environment|social_services|other",
    "summary": "brief summary",
    "suggested_actions": ["action1", "action2"]
  }
}
`
