package entities

type Topic string

type TopicRule struct {
	Topic    Topic    `yaml:"topic"`
	Keywords []string `yaml:"keywords"`
}

// TopicTable drives the categorizer: rules are evaluated in order, then the
// source default, then the fallback.
type TopicTable struct {
	Rules          []TopicRule      `yaml:"rules"`
	SourceDefaults map[string]Topic `yaml:"sourceDefaults"`
	Fallback       Topic            `yaml:"fallback"`
}

func (t TopicTable) Topics() []Topic {
	topics := make([]Topic, 0, len(t.Rules))
	for _, r := range t.Rules {
		topics = append(topics, r.Topic)
	}
	return topics
}
