package config

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	DevEnv  = "dev"
	TestEnv = "test"
	ProdEnv = "prod"
)

// LoadDotEnvs loads the .env files following the convention
// https://github.com/bkeepers/dotenv#what-other-env-files-can-i-use
// Variables already present in the environment are never overwritten, so the
// first file that defines a key wins.
func LoadDotEnvs(rootPath string) {
	env := os.Getenv("YATUBE_ENV")
	if env == "" {
		env = DevEnv
	}

	// .env.[env].local has highest priority, usually holds credentials
	_ = godotenv.Load(rootPath + ".env." + env + ".local")
	if env != TestEnv {
		// tests should get the same result for everyone
		_ = godotenv.Load(rootPath + ".env.local")
	}
	_ = godotenv.Load(rootPath + ".env." + env)
	_ = godotenv.Load(rootPath + ".env")
}
