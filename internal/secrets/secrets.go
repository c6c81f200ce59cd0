package secrets

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Example files that document the variables a service expects, in lookup
// order.
var exampleFiles = []string{".env.example", ".env.sample", ".env.template"}

// EnvStatus compares a service's .env file against its example file.
type EnvStatus struct {
	EnvFile     string
	HasEnvFile  bool
	ExampleFile string // empty when the service documents nothing
	Missing     []string
}

// Complete reports whether every documented variable is set.
func (s EnvStatus) Complete() bool { return len(s.Missing) == 0 }

// ReadEnvFile reads an .env file and returns defined variables. A missing
// file yields an empty map.
func ReadEnvFile(envPath string) (map[string]string, error) {
	vars := make(map[string]string)

	file, err := os.Open(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return vars, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
			vars[key] = value
		}
	}

	return vars, scanner.Err()
}

// CheckEnvStatus reports which variables from dir's example file are set
// neither in dir/.env nor in the current environment.
func CheckEnvStatus(dir string) (EnvStatus, error) {
	status := EnvStatus{EnvFile: filepath.Join(dir, ".env")}
	if _, err := os.Stat(status.EnvFile); err == nil {
		status.HasEnvFile = true
	}

	for _, name := range exampleFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			status.ExampleFile = path
			break
		}
	}
	if status.ExampleFile == "" {
		return status, nil
	}

	documented, err := ReadEnvFile(status.ExampleFile)
	if err != nil {
		return status, err
	}
	defined, err := ReadEnvFile(status.EnvFile)
	if err != nil {
		return status, err
	}

	for key := range documented {
		if _, ok := defined[key]; ok {
			continue
		}
		if os.Getenv(key) != "" {
			continue
		}
		status.Missing = append(status.Missing, key)
	}
	sort.Strings(status.Missing)
	return status, nil
}
