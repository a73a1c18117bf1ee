package config

import "strings"

func (c *Config) normalize() error {
	c.Backend.Kind = strings.ToLower(strings.TrimSpace(c.Backend.Kind))
	c.Backend.Binary = strings.TrimSpace(c.Backend.Binary)
	c.Backend.Endpoint = strings.TrimSpace(c.Backend.Endpoint)
	c.Backend.APIKey = strings.TrimSpace(c.Backend.APIKey)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	for _, field := range []*string{&c.Paths.WorkDir, &c.Paths.LogDir, &c.Paths.FeedbackDB} {
		expanded, err := expandPath(strings.TrimSpace(*field))
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}
