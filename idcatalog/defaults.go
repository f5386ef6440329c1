package idcatalog

// DefaultRecords are the government ID types accepted by the registration
// form. Patterns and placeholders must stay byte-for-byte identical to what
// the signup API and other clients validate against.
var DefaultRecords = []Record{
	{Key: "passport", Pattern: `^[A-Z][0-9]{7}[A-Z]$`, Placeholder: "e.g. P1234567A"},
	{Key: "driver_license", Pattern: `^[A-Z0-9-]{5,15}$`, Placeholder: "e.g. N01-23-456789"},
	{Key: "umid", Pattern: `^CRN-[0-9]{4}-[0-9]{7}-[0-9]$`, Placeholder: "e.g. CRN-0123-4567890-1"},
	{Key: "sss", Pattern: `^[0-9]{2}-[0-9]{7}-[0-9]$`, Placeholder: "e.g. 34-5678901-2"},
	{Key: "gsis", Pattern: `^[0-9]{10}$`, Placeholder: "e.g. 1234567890"},
	{Key: "prc", Pattern: `^[0-9]{7}$`, Placeholder: "e.g. 1234567"},
	{Key: "voter", Pattern: `^[0-9]{4}-[0-9]{4}-[0-9]{4}-[0-9]{4}$`, Placeholder: "e.g. 1234-5678-9012-3456"},
	{Key: "postal", Pattern: `^[0-9]{4}-[0-9]{4}-[0-9]{4}$`, Placeholder: "e.g. 1234-5678-9012"},
	{Key: "national_id", Pattern: `^[0-9]{4}-[0-9]{4}-[0-9]{4}-[0-9]{4}$`, Placeholder: "e.g. 1234-5678-9012-3456"},
	{Key: "tin", Pattern: `^[0-9]{3}-[0-9]{3}-[0-9]{3}$`, Placeholder: "e.g. 123-456-789"},
}

var defaultCatalog = MustNew(DefaultRecords)

// Default returns the shared catalog built from DefaultRecords.
func Default() *Catalog {
	return defaultCatalog
}
