//nolint:all
package model

// LangStringNameType is a name string together with its language tag.
type LangStringNameType struct {
	Language string `json:"language"`

	Text string `json:"text"`
}

// LangStringTextType is a text string together with its language tag.
type LangStringTextType struct {
	Language string `json:"language"`

	Text string `json:"text"`
}
