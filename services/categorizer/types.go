package categorizer

import "regwatch/models/entities"

type Service interface {
	Categorize(title, description, sourceKey string) []entities.Topic
	Topics() []entities.Topic
	ResolveTopic(name string) (entities.Topic, error)
}

type rule struct {
	topic    entities.Topic
	keywords []string
}

type Impl struct {
	rules          []rule
	sourceDefaults map[string]entities.Topic
	fallback       entities.Topic
}
