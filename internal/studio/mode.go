package studio

type Mode string

const (
	ModeDesignKit      Mode = "design_kit"
	ModeCreativeStudio Mode = "creative_studio"
)

type CreativeSubMode string

const (
	CreativeIllustrate CreativeSubMode = "illustrate"
	CreativeRetouch    CreativeSubMode = "retouch"
)

type RetouchSubMode string

const (
	RetouchSmart       RetouchSubMode = "smart"
	RetouchEnvironment RetouchSubMode = "environment"
)

// ModeState is the hierarchical mode of a session. Sub-modes are only set when
// their parent is active, so state like "design kit with a retouch sub-mode"
// cannot be built through the constructors below.
type ModeState struct {
	mode     Mode
	creative CreativeSubMode
	retouch  RetouchSubMode
}

func DesignKit() ModeState {
	return ModeState{mode: ModeDesignKit}
}

func Illustrate() ModeState {
	return ModeState{mode: ModeCreativeStudio, creative: CreativeIllustrate}
}

func SmartRetouchMode() ModeState {
	return ModeState{mode: ModeCreativeStudio, creative: CreativeRetouch, retouch: RetouchSmart}
}

func EnvironmentMode() ModeState {
	return ModeState{mode: ModeCreativeStudio, creative: CreativeRetouch, retouch: RetouchEnvironment}
}

func (m ModeState) Mode() Mode                   { return m.mode }
func (m ModeState) CreativeSub() CreativeSubMode { return m.creative }
func (m ModeState) RetouchSub() RetouchSubMode   { return m.retouch }

func (m ModeState) IsDesignKit() bool {
	return m.mode == ModeDesignKit
}

func (m ModeState) IsIllustrate() bool {
	return m.mode == ModeCreativeStudio && m.creative == CreativeIllustrate
}

func (m ModeState) IsSmartRetouch() bool {
	return m.mode == ModeCreativeStudio && m.creative == CreativeRetouch && m.retouch == RetouchSmart
}

func (m ModeState) IsEnvironment() bool {
	return m.mode == ModeCreativeStudio && m.creative == CreativeRetouch && m.retouch == RetouchEnvironment
}

func (m ModeState) String() string {
	switch {
	case m.IsDesignKit():
		return "design kit"
	case m.IsIllustrate():
		return "creative studio / illustrate"
	case m.IsSmartRetouch():
		return "creative studio / retouch (smart)"
	case m.IsEnvironment():
		return "creative studio / retouch (environment)"
	default:
		return "unknown"
	}
}
