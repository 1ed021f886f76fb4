package constants

import "regwatch/models/entities"

const (
	TopicBSAAML             entities.Topic = "BSA/AML"
	TopicSanctions          entities.Topic = "Sanctions"
	TopicConsumerProtection entities.Topic = "Consumer Protection"
	TopicFairLending        entities.Topic = "Fair Lending"
	TopicMortgageRESPA      entities.Topic = "Mortgage/RESPA"
	TopicBankOperations     entities.Topic = "Bank Operations"
	TopicEnforcement        entities.Topic = "Enforcement"
	TopicCyberPrivacy       entities.Topic = "Cybersecurity/Privacy"
	TopicGeneral            entities.Topic = "General"
)

// GetTopicTable returns the built-in keyword table. Keywords are matched as
// lower-case substrings, so trailing spaces ("sar ") are significant.
func GetTopicTable() entities.TopicTable {
	return entities.TopicTable{
		Rules: []entities.TopicRule{
			{Topic: TopicBSAAML, Keywords: []string{
				"bsa", "aml", "anti-money laundering", "bank secrecy",
				"suspicious activity", "sar ", "ctr ", "currency transaction",
				"beneficial ownership", "boi", "cdd", "customer due diligence",
				"money laundering", "illicit finance", "financial crimes",
				"shell company", "know your customer", "kyc",
			}},
			{Topic: TopicSanctions, Keywords: []string{
				"sanction", "ofac", "sdn", "specially designated",
				"blocked person", "embargo", "designation",
			}},
			{Topic: TopicConsumerProtection, Keywords: []string{
				"consumer", "udaap", "unfair", "deceptive",
				"abusive", "complaint", "disclosure", "tila",
				"truth in lending", "reg z", "reg e", "electronic fund",
				"credit card", "debt collection", "payday",
			}},
			{Topic: TopicFairLending, Keywords: []string{
				"fair lending", "hmda", "ecoa", "equal credit",
				"redlining", "discrimination", "community reinvestment", "cra",
			}},
			{Topic: TopicMortgageRESPA, Keywords: []string{
				"mortgage", "respa", "real estate settlement",
				"servicing", "foreclosure", "loss mitigation", "escrow",
			}},
			{Topic: TopicBankOperations, Keywords: []string{
				"capital", "liquidity", "stress test",
				"operational risk", "risk management", "examination",
				"supervisory", "occ bulletin", "safety and soundness",
				"basel", "reserve requirement",
			}},
			{Topic: TopicEnforcement, Keywords: []string{
				"enforcement", "consent order", "civil money penalty",
				"cease and desist", "formal agreement", "fine",
				"penalty", "violation", "action against",
			}},
			{Topic: TopicCyberPrivacy, Keywords: []string{
				"cyber", "data breach", "information security",
				"privacy", "glba", "gramm-leach", "incident",
				"ransomware", "phishing",
			}},
		},
		SourceDefaults: map[string]entities.Topic{
			"fincen": TopicBSAAML,
			"cfpb":   TopicConsumerProtection,
		},
		Fallback: TopicGeneral,
	}
}
