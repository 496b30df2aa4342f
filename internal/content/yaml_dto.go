package content

// YAML shapes of the panels file.
type (
	yamlPage struct {
		Title      string       `yaml:"title"`
		Subtitle   string       `yaml:"subtitle"`
		Disclaimer string       `yaml:"disclaimer"`
		Tagline    string       `yaml:"tagline"`
		Schema     []yamlSchema `yaml:"schema"`
		Panels     []yamlPanel  `yaml:"panels"`
	}

	yamlSchema struct {
		Category    string `yaml:"category"`
		Description string `yaml:"description"`
	}

	yamlPanel struct {
		ID    string     `yaml:"id"`
		Title string     `yaml:"title"`
		Intro string     `yaml:"intro"`
		Items []yamlItem `yaml:"items"`
		Info  string     `yaml:"info"`
	}

	yamlItem struct {
		Title      string      `yaml:"title"`
		Body       string      `yaml:"body"`
		Categories []string    `yaml:"categories"`
		Scores     []yamlScore `yaml:"scores"`
	}

	yamlScore struct {
		Name  string `yaml:"name"`
		Value string `yaml:"value"`
	}
)
