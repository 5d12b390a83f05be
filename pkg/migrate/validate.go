package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const versionLayout = "20060102150405"

var migrationFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir checks every .sql file in dir: filename shape, unique versions,
// both goose sections present and balanced statement blocks.
func ValidateDir(dir string) error {
	_, err := migrationFiles(dir)
	return err
}

// ValidateInSync validates each dir and then requires all of them to hold the
// same set of migration filenames.
func ValidateInSync(dirs ...string) error {
	var (
		want    []string
		wantDir string
	)
	for _, dir := range dirs {
		files, err := migrationFiles(dir)
		if err != nil {
			return err
		}
		if want == nil {
			want, wantDir = files, dir
			continue
		}
		if missing := difference(want, files); len(missing) > 0 {
			return fmt.Errorf("%s lacks %s (present in %s)", dir, strings.Join(missing, ", "), wantDir)
		}
		if extra := difference(files, want); len(extra) > 0 {
			return fmt.Errorf("%s has %s not present in %s", dir, strings.Join(extra, ", "), wantDir)
		}
	}
	return nil
}

func migrationFiles(dir string) ([]string, error) {
	if dir == "" {
		return nil, fmt.Errorf("migration dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	versions := make(map[string]string)
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".sql" {
			continue
		}
		m := migrationFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("%s: expected <%s>_<name>.sql", name, versionLayout)
		}
		if prev, dup := versions[m[1]]; dup {
			return nil, fmt.Errorf("version %s used by both %s and %s", m[1], prev, name)
		}
		versions[m[1]] = name

		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if err := checkAnnotations(string(raw)); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		files = append(files, name)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no migrations in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

func checkAnnotations(sql string) error {
	for _, section := range []string{"-- +goose Up", "-- +goose Down"} {
		if !strings.Contains(sql, section) {
			return fmt.Errorf("missing %q", section)
		}
	}
	if strings.Count(sql, "-- +goose StatementBegin") != strings.Count(sql, "-- +goose StatementEnd") {
		return fmt.Errorf("unbalanced StatementBegin/StatementEnd")
	}
	return nil
}

func difference(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, v := range b {
		seen[v] = struct{}{}
	}
	var out []string
	for _, v := range a {
		if _, ok := seen[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
