package constants

import "regwatch/models/entities"

func GetFeedSources() []entities.FeedSource {
	var sources []entities.FeedSource
	sources = append(sources, entities.FeedSource{Key: "cfpb", Label: "CFPB", URL: "https://www.consumerfinance.gov/feed/", Color: "#2E8540"})
	sources = append(sources, entities.FeedSource{Key: "occ", Label: "OCC", URL: "https://www.occ.gov/static/news-issuances/ews/occ-news-issuances.xml", Color: "#003366"})
	sources = append(sources, entities.FeedSource{Key: "fincen", Label: "FinCEN", URL: "https://www.federalregister.gov/api/v1/documents.rss?conditions[agencies][]=financial-crimes-enforcement-network", Color: "#8B0000"})
	sources = append(sources, entities.FeedSource{Key: "frb", Label: "FRB", URL: "https://www.federalreserve.gov/feeds/press_all.xml", Color: "#1B3A5C"})

	for i := range sources {
		sources[i].Position = i
	}
	return sources
}

// GetForwardingPaths lists the public forwarding endpoints tried in order.
func GetForwardingPaths() []string {
	return []string{
		"https://api.allorigins.win/raw?url={url}",
		"https://corsproxy.io/?{url}",
		"https://api.codetabs.com/v1/proxy?quest={url}",
	}
}
