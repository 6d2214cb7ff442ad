package preset

// NoneID marks the sentinel preset of a multi-select category: "apply nothing
// of this kind". It is an ordinary catalog member, always at index 0.
const NoneID = "none"

type Preset struct {
	ID          string
	Name        string
	Description string
	Prompt      string
}

type Category string

const (
	CategoryCamera        Category = "camera"
	CategoryLighting      Category = "lighting"
	CategoryManipulation  Category = "manipulation"
	CategoryPeopleRetouch Category = "people_retouch"
	CategoryRetouch       Category = "retouch"
	CategoryMockup        Category = "mockup"
	CategoryIllustration  Category = "illustration_style"
	CategoryEnvironment   Category = "environment"
)

func (p Preset) IsNone() bool {
	return p.ID == NoneID
}

// Find returns the catalog entry with the given id.
func Find(catalog []Preset, id string) (Preset, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}
