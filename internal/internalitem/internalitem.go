// Package internalitem models the internal item document produced by
// conversion: flattened descriptive metadata, sequenced pages, and the
// logical structure forest.
package internalitem

// Orientation of an image.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Item is an internal item document.
type Item struct {
	DescriptiveMetadata []DescriptiveMetadataSection `json:"descriptiveMetadata"`
	Pages               []Page                       `json:"pages"`
	LogicalStructures   []LogicalStructureNode       `json:"logicalStructures"`

	Properties
}

// Properties are the scalar item-level properties of an internal item.
type Properties struct {
	TextDirection                 string `json:"textDirection,omitempty"`
	ItemType                      string `json:"itemType,omitempty"`
	NumberOfPages                 *int   `json:"numberOfPages,omitempty"`
	Embeddable                    *bool  `json:"embeddable,omitempty"`
	SourceData                    string `json:"sourceData,omitempty"`
	UseTranscriptions             *bool  `json:"useTranscriptions,omitempty"`
	UseNormalisedTranscriptions   *bool  `json:"useNormalisedTranscriptions,omitempty"`
	UseDiplomaticTranscriptions   *bool  `json:"useDiplomaticTranscriptions,omitempty"`
	AllTranscriptionDiplomaticURL string `json:"allTranscriptionDiplomaticURL,omitempty"`
	UseTranslations               *bool  `json:"useTranslations,omitempty"`
	Completeness                  string `json:"completeness,omitempty"`
}

// Page is a sequenced page of an internal item.
type Page struct {
	Label    string `json:"label"`
	PhysID   string `json:"physID"`
	Sequence int    `json:"sequence"`

	DisplayImageURL            string      `json:"displayImageURL,omitempty"`
	DownloadImageURL           string      `json:"downloadImageURL,omitempty"`
	IIIFImageURL               string      `json:"IIIFImageURL,omitempty"`
	ThumbnailImageURL          string      `json:"thumbnailImageURL,omitempty"`
	ThumbnailImageOrientation  Orientation `json:"thumbnailImageOrientation,omitempty"`
	ImageWidth                 int         `json:"imageWidth,omitempty"`
	ImageHeight                int         `json:"imageHeight,omitempty"`
	TranscriptionNormalisedURL string      `json:"transcriptionNormalisedURL,omitempty"`
	TranscriptionDiplomaticURL string      `json:"transcriptionDiplomaticURL,omitempty"`
	TranslationURL             string      `json:"translationURL,omitempty"`

	// Content holds the text of an essay item.
	Content  string `json:"content,omitempty"`
	PageType string `json:"pageType,omitempty"`
}

// LogicalStructureNode is one entry in an item's table of contents. Children
// span pages within their parent's span.
type LogicalStructureNode struct {
	DescriptiveMetadataID string `json:"descriptiveMetadataID"`
	Label                 string `json:"label"`

	StartPagePosition int    `json:"startPagePosition"`
	StartPageLabel    string `json:"startPageLabel"`
	StartPageID       string `json:"startPageID,omitempty"`
	EndPagePosition   int    `json:"endPagePosition"`
	EndPageLabel      string `json:"endPageLabel,omitempty"`
	EndPageID         string `json:"endPageID,omitempty"`

	Children []LogicalStructureNode `json:"children,omitempty"`
}

// Contains reports whether other's span lies within n's span.
func (n LogicalStructureNode) Contains(other LogicalStructureNode) bool {
	return n.StartPagePosition <= other.StartPagePosition && n.EndPagePosition >= other.EndPagePosition
}

// Overlaps reports whether the spans of n and other share at least one page.
func (n LogicalStructureNode) Overlaps(other LogicalStructureNode) bool {
	return n.StartPagePosition <= other.EndPagePosition && other.StartPagePosition <= n.EndPagePosition
}
