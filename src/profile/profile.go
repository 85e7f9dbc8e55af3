package profile

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"biometric-insights/src/models"
)

var (
	heightFeetRe   = regexp.MustCompile(`(\d+)_FT`)
	heightInchesRe = regexp.MustCompile(`(\d+)_IN`)
	weightRe       = regexp.MustCompile(`(\d+)_LB`)
)

// -----------------------------------------------------------------------------

// Parse reads best-effort metadata out of an archive directory name such as
// `JANE_FEMALE_5_FT_6_IN_140_LB`. Unrecognised parts are ignored.
func Parse(dir string) models.MUserProfile {
	name := filepath.Base(filepath.Clean(dir))
	p := models.MUserProfile{Name: name}

	upper := strings.ToUpper(name)
	switch {
	case strings.Contains(upper, "FEMALE"):
		p.Gender = models.GenderFemale
	case strings.Contains(upper, "MALE"):
		p.Gender = models.GenderMale
	}

	if m := heightFeetRe.FindStringSubmatch(upper); m != nil {
		feet, _ := strconv.Atoi(m[1])
		inches := float64(feet * 12)
		if mi := heightInchesRe.FindStringSubmatch(upper); mi != nil {
			extra, _ := strconv.Atoi(mi[1])
			inches += float64(extra)
		}
		if inches > 0 {
			p.HeightIn = &inches
		}
	}

	if m := weightRe.FindStringSubmatch(upper); m != nil {
		if lb, err := strconv.Atoi(m[1]); err == nil && lb > 0 {
			weight := float64(lb)
			p.WeightLb = &weight
		}
	}

	return p
}

// -----------------------------------------------------------------------------

// ListProfiles returns the user directories under an archive root, sorted
// by name.
func ListProfiles(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}
