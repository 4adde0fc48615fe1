package catalog

// Poster palette, as hex strings without the leading '#'.
const (
	Navy      = "1A3F6F"
	LightBlue = "2E75B6"
	Teal      = "0D9488"
	Green     = "16A34A"
	Orange    = "EA580C"
	Red       = "DC2626"
	Violet    = "7C3AED"
	Slate     = "64748B"
	Gold      = "D97706"
	White     = "FFFFFF"
	Paper     = "F8FAFC"
	Ink       = "0F172A"
	Body      = "1E293B"
	Rule      = "475569"
	Silver    = "94A3B8"
	SkyBlue   = "60A5FA"
	Shadow    = "CBD5E1"
	Cream     = "FFF7ED"
	Umber     = "92400E"
)
