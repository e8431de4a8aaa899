package config

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(jwtSecret, noAuthPrincipal, noAuthRole string) *Auth {
	return &Auth{
		jwtSecret:       jwtSecret,
		roleClaim:       "role",
		noAuthPrincipal: noAuthPrincipal,
		noAuthRole:      noAuthRole,
	}
}

// NewScoringForTest creates a Scoring config for testing purposes
func NewScoringForTest(endpoint string, alertThreshold int, amountThreshold float64) *Scoring {
	return &Scoring{
		endpoint:        endpoint,
		alertThreshold:  alertThreshold,
		amountThreshold: amountThreshold,
	}
}

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, channelID string) *Slack {
	return &Slack{
		botToken:  botToken,
		channelID: channelID,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewSeedForTest creates a Seed config for testing purposes
func NewSeedForTest(path string) *Seed {
	return &Seed{path: path}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID string) *Repository {
	return &Repository{
		backend:   backend,
		projectID: projectID,
	}
}
