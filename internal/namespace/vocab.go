package namespace

// Schema document URIs.
const (
	PackageItemSchema  = "https://schemas.cudl.lib.cam.ac.uk/package/v1/item.json"
	InternalItemSchema = "https://schemas.cudl.lib.cam.ac.uk/__internal__/v1/item.json"
)

// Default vocabularies. These are always present in a Namespace and take
// priority over document-supplied bindings.
var (
	// PageResource is the vocabulary of page resource types.
	PageResource = Binding{
		CuriePrefix: "cdl-page",
		URIPrefix:   PackageItemSchema + "#/definitions/pageResources/",
	}

	// Role is the vocabulary of item data roles.
	Role = Binding{
		CuriePrefix: "cdl-role",
		URIPrefix:   PackageItemSchema + "#data-role-",
	}

	// Data is the vocabulary of item data types.
	Data = Binding{
		CuriePrefix: "cdl-data",
		URIPrefix:   PackageItemSchema + "#/definitions/data/",
	}
)

// Well-known type URIs.
var (
	PageImage         = PageResource.URI("image")
	PageTranslation   = PageResource.URI("translation")
	PageTranscription = PageResource.URI("transcription")

	DataProperties = Data.URI("properties")
	DataLink       = Data.URI("link")
)

// DefaultBindings returns a fresh copy of the default bindings in priority order.
func DefaultBindings() []Binding {
	return []Binding{Data, Role, PageResource}
}
