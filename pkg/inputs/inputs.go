// Package inputs reads the fixed-path input files: the target list and the
// credential file shared by every request of a run.
package inputs

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Credential is the administrator login used against every appliance. It is
// loaded once at startup and passed around read-only.
type Credential struct {
	Username string
	Password string
}

// ReadTargets reads appliance addresses from the first column of a CSV file.
// Blank lines and rows whose first column is empty are skipped; surviving
// values are trimmed. Order and duplicates are preserved.
func ReadTargets(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open target list: %w", err)
	}
	defer f.Close()

	targets, err := parseTargets(f)
	if err != nil {
		return nil, fmt.Errorf("read target list %s: %w", path, err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("target list %s contains no addresses", path)
	}
	return targets, nil
}

func parseTargets(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	var targets []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 0 {
			continue
		}
		target := strings.TrimSpace(record[0])
		if target == "" {
			continue
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// ReadCredential reads a two-line credential file: username on the first
// line, password on the second. Both are trimmed and must be non-empty.
func ReadCredential(path string) (Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credential{}, fmt.Errorf("open credential file: %w", err)
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return Credential{}, fmt.Errorf("credential file %s must contain a username line and a password line", path)
	}
	cred := Credential{
		Username: strings.TrimSpace(lines[0]),
		Password: strings.TrimSpace(lines[1]),
	}
	if cred.Username == "" {
		return Credential{}, fmt.Errorf("credential file %s has an empty username line", path)
	}
	if cred.Password == "" {
		return Credential{}, fmt.Errorf("credential file %s has an empty password line", path)
	}
	return cred, nil
}
