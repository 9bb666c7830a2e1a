package domain

// ProviderName identifies an image generation backend.
type ProviderName string

const (
	ProviderOpenAI     ProviderName = "openai"
	ProviderFal        ProviderName = "fal"
	ProviderGemini     ProviderName = "gemini"
	ProviderSelfHosted ProviderName = "selfhosted"
)

// ModelInfo describes one generation model available to the app.
type ModelInfo struct {
	ID           string
	Provider     ProviderName
	DisplayName  string
	CostPerImage float64
	// MaxRefs is the number of reference images the model accepts
	// (0 = text-to-image only).
	MaxRefs int
}

// Models returns the built-in model catalog.
func Models() []ModelInfo {
	return []ModelInfo{
		{ID: "gemini-flash", Provider: ProviderGemini, DisplayName: "Gemini 2.5 Flash", CostPerImage: 0.039, MaxRefs: 10},
		{ID: "gemini-pro", Provider: ProviderGemini, DisplayName: "Gemini 3 Pro", CostPerImage: 0.134, MaxRefs: 10},
		{ID: "fal-ai/flux/schnell", Provider: ProviderFal, DisplayName: "FLUX Schnell", CostPerImage: 0.003},
		{ID: "fal-ai/flux-pro/v1.1", Provider: ProviderFal, DisplayName: "FLUX Pro 1.1", CostPerImage: 0.05},
		{ID: "fal-ai/flux-pro/v1.1-ultra", Provider: ProviderFal, DisplayName: "FLUX Pro 1.1 Ultra", CostPerImage: 0.06},
		{ID: "fal-ai/recraft-v3", Provider: ProviderFal, DisplayName: "Recraft V3", CostPerImage: 0.04},
		{ID: "fal-ai/z-image/turbo", Provider: ProviderFal, DisplayName: "Z-Image Turbo", CostPerImage: 0.005, MaxRefs: 1},
		{ID: "dall-e-3", Provider: ProviderOpenAI, DisplayName: "DALL-E 3", CostPerImage: 0.04},
		{ID: "gpt-image-1", Provider: ProviderOpenAI, DisplayName: "GPT Image 1", CostPerImage: 0.02},
		{ID: "animagine", Provider: ProviderSelfHosted, DisplayName: "Animagine XL 4.0 (Local)", MaxRefs: 1},
		{ID: "pony", Provider: ProviderSelfHosted, DisplayName: "Pony Diffusion V6 (Local)", MaxRefs: 1},
		{ID: "noobai", Provider: ProviderSelfHosted, DisplayName: "NoobAI XL (Local)", MaxRefs: 1},
	}
}

// FindModel looks up a model by ID, returning false if unknown.
func FindModel(id string) (ModelInfo, bool) {
	for _, m := range Models() {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// GenerateParams are the inputs for a new generation.
type GenerateParams struct {
	Prompt         string
	Model          string
	Tags           []string
	ReferencePaths []string
	NegativePrompt string
	Width          int
	Height         int
	CopyTo         string
	// ParentID links a regeneration back to the record it was spawned
	// from; 0 for a fresh generation.
	ParentID int64
}

// GenerationOutput is what a provider returns for a completed generation.
type GenerationOutput struct {
	ImageData         []byte
	Seed              string
	GenerationSeconds float64
	// CostUSD is the actual API-reported cost when available; it takes
	// precedence over the catalog estimate.
	CostUSD float64
}

// ResolveAspectRatio maps a friendly ratio name to SDXL-native pixel
// dimensions (~1M pixels). Unknown names return ok=false.
func ResolveAspectRatio(ratio string) (width, height int, ok bool) {
	switch ratio {
	case "square", "1:1":
		return 1024, 1024, true
	case "portrait", "2:3":
		return 832, 1216, true
	case "landscape", "3:2":
		return 1216, 832, true
	case "wide", "16:9":
		return 1344, 768, true
	case "tall", "9:16":
		return 768, 1344, true
	case "4:3":
		return 1152, 896, true
	case "3:4":
		return 896, 1152, true
	}
	return 0, 0, false
}
