package descriptions

// Comprehensive tool descriptions with practical examples and use cases

const (
	// Analysis Tools
	OCRAnalyzeFileDescription = `Analyze a scanned document end to end: classification, field extraction and MRZ decoding.

**When to use:** You have a document file on disk and want structured fields instead of raw text.

**Why it's useful:** Combines document classification, declarative extraction rules, machine-readable-zone decoding and token label reconciliation in a single call.

**Examples:**
• Passport intake: "Analyze passport-scan.pdf to get name, document number and check digit validity"
• Invoice processing: "Analyze invoice-2024-001.pdf to extract invoice numbers, amounts and accounting period"
• Diploma verification: "Analyze diploma.pdf to extract institution, holder name and certification hints"

**Common workflows:**
1. Document Intake: Analyze file → Review doc_type and fields → Route to downstream system
2. Identity Verification: Analyze passport scan → Check MRZ validity flags → Accept or flag for review
3. Debugging Rules: Analyze with debug=true → Inspect the rule trace → Adjust the rule document

**Best practices:** Validate the file first; pass debug=true while developing extraction rules to see why each rule matched or was rejected.`

	OCRAnalyzeTextDescription = `Analyze already-recognized text: classify the document and extract fields without geometry.

**When to use:** OCR already happened elsewhere and you only have the recognized string.

**Why it's useful:** Runs the same classification, rule engine and MRZ inference as file analysis, minus the layout-dependent steps.

**Examples:**
• Pipeline integration: "Extract fields from the text an external OCR engine produced"
• Quick checks: "Classify this pasted text and pull out any MRZ lines"

**Common workflows:**
1. External OCR: Recognize elsewhere → Analyze text here → Merge fields into your records
2. Rule Development: Paste sample text → Inspect extracted fields → Iterate on rules

**Best practices:** Keep line breaks intact; MRZ inference works per line and loses accuracy on reflowed text.`

	OCRDecodeMRZDescription = `Decode machine-readable-zone lines (TD1, TD2 or TD3) into structured fields with check digit validation.

**When to use:** You already isolated the MRZ lines of a passport, ID card or visa and want the parsed fields.

**Why it's useful:** Handles all three ICAO layouts, validates every check digit including the composite, and reports per-field validity instead of failing on corrupted input.

**Examples:**
• Passport MRZ: "Decode the two 44-character lines from a passport scan"
• ID card MRZ: "Decode the three 30-character lines from an identity card"

**Common workflows:**
1. Verification: Decode MRZ → Check validity flags → Compare against visual-zone fields
2. Data Entry: Decode MRZ → Prefill forms → Have a human confirm

**Best practices:** Pass lines exactly as recognized; the decoder normalizes case and spacing itself and flags fields whose check digits fail rather than discarding them.`

	OCRValidateFileDescription = `Verify document file integrity and readability before processing.

**When to use:** Before analyzing any file, especially in automated workflows or when handling uploads.

**Why it's useful:** Prevents processing errors and identifies corrupted or oversized files early.

**Examples:**
• Batch safety: "Validate all files in /scans/ before bulk analysis"
• Upload verification: "Check user-uploaded passport.pdf is readable before processing"

**Common workflows:**
1. Automated Processing: Validate → Analyze if valid → Handle errors gracefully
2. Quality Control: Validate → Report issues → Fix or reject bad files

**Best practices:** Always run this first in automated workflows handling unknown files.`

	// Search and Discovery Tools
	OCRSearchDirectoryDescription = `Discover and filter document files across directories with fuzzy filename search.

**When to use:** Need to find specific scans by name patterns or build file inventories.

**Why it's useful:** Quickly locates relevant documents without manual browsing, supports fuzzy matching for partial names.

**Examples:**
• Find passports: "Search /scans/ for files containing 'passport'"
• Inventory building: "List all documents in /archive/ to understand content scope"

**Common workflows:**
1. Targeted Processing: Search for patterns → Analyze matching files → Collect fields
2. Batch Operations: Find files → Validate each → Process in sequence

**Best practices:** Use fuzzy search for partial matches; invalid and oversized files are skipped automatically.`

	// Utility Tools
	OCRServerInfoDescription = `Get real-time server status, available tools and system capabilities.

**When to use:** Starting work with the server, troubleshooting, or checking available functionality.

**Why it's useful:** Provides the current configuration, directory contents and tool inventory for informed decision-making.

**Examples:**
• System check: "Verify the server is ready before batch processing"
• Troubleshooting: "Check server info to diagnose why files aren't being found"

**Common workflows:**
1. Session Startup: Check server info → Verify capabilities → Plan processing approach
2. Debugging: Review status → Check directory paths → Verify tool availability

**Best practices:** Run at the start of sessions for a quick overview of the document directory.`
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	"ocr_analyze_file":     OCRAnalyzeFileDescription,
	"ocr_analyze_text":     OCRAnalyzeTextDescription,
	"ocr_decode_mrz":       OCRDecodeMRZDescription,
	"ocr_validate_file":    OCRValidateFileDescription,
	"ocr_search_directory": OCRSearchDirectoryDescription,
	"ocr_server_info":      OCRServerInfoDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}
