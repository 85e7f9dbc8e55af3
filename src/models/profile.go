package models

// Gender as encoded in the archive directory name.
type Gender string

const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// MUserProfile is best-effort metadata about the archive owner. Every field is
// optional.
type MUserProfile struct {
	Name     string   `json:"name"`
	Gender   Gender   `json:"gender,omitempty"`
	HeightIn *float64 `json:"height_in,omitempty"`
	WeightLb *float64 `json:"weight_lb,omitempty"`
}

// BMI is the imperial estimate weight_lb * 703 / height_in^2, nil when either
// input is missing.
func (p MUserProfile) BMI() *float64 {
	if p.HeightIn == nil || p.WeightLb == nil || *p.HeightIn <= 0 {
		return nil
	}
	bmi := (*p.WeightLb * 703) / (*p.HeightIn * *p.HeightIn)
	return &bmi
}
