package categorizer

import (
	"fmt"
	"strings"

	"regwatch/models/constants"
	"regwatch/models/entities"
)

// New compiles a keyword table. Keywords are lower-cased once here so
// matching only lower-cases the text.
func New(table entities.TopicTable) *Impl {
	rules := make([]rule, 0, len(table.Rules))
	for _, r := range table.Rules {
		keywords := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if kw == "" {
				continue
			}
			keywords = append(keywords, strings.ToLower(kw))
		}
		rules = append(rules, rule{topic: r.Topic, keywords: keywords})
	}

	defaults := make(map[string]entities.Topic, len(table.SourceDefaults))
	for k, v := range table.SourceDefaults {
		defaults[k] = v
	}

	fallback := table.Fallback
	if fallback == "" {
		fallback = constants.TopicGeneral
	}

	return &Impl{rules: rules, sourceDefaults: defaults, fallback: fallback}
}

// Categorize returns every topic having a keyword in title or description,
// in table order. It never returns an empty list.
func (service *Impl) Categorize(title, description, sourceKey string) []entities.Topic {
	text := strings.ToLower(title + " " + description)

	var matched []entities.Topic
	for _, r := range service.rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				matched = append(matched, r.topic)
				break
			}
		}
	}
	if len(matched) > 0 {
		return matched
	}

	if topic, ok := service.sourceDefaults[sourceKey]; ok {
		return []entities.Topic{topic}
	}
	return []entities.Topic{service.fallback}
}

// Topics lists the topics that keyword rules can assign, in table order.
func (service *Impl) Topics() []entities.Topic {
	topics := make([]entities.Topic, 0, len(service.rules))
	for _, r := range service.rules {
		topics = append(topics, r.topic)
	}
	return topics
}

// ResolveTopic maps user input to a known topic, case-insensitively. The
// fallback topic is accepted too.
func (service *Impl) ResolveTopic(name string) (entities.Topic, error) {
	name = strings.TrimSpace(name)
	for _, topic := range append(service.Topics(), service.fallback) {
		if strings.EqualFold(string(topic), name) {
			return topic, nil
		}
	}
	valid := make([]string, 0, len(service.rules))
	for _, topic := range service.Topics() {
		valid = append(valid, string(topic))
	}
	return "", fmt.Errorf("unknown topic %q (valid: %s)", name, strings.Join(valid, ", "))
}
