package model

// SignalCategory is one of the eleven buying-signal categories.
type SignalCategory string

const (
	CategoryPlanningVisibility    SignalCategory = "planning_visibility"
	CategoryInventoryOptimization SignalCategory = "inventory_optimization"
	CategoryProcurementSourcing   SignalCategory = "procurement_sourcing"
	CategoryTMSLogistics          SignalCategory = "tms_logistics"
	CategoryWMSWarehouse          SignalCategory = "wms_warehouse"
	CategoryS2PTransformation     SignalCategory = "s2p_transformation"
	CategoryERPMigration          SignalCategory = "erp_migration"
	CategorySupplierRisk          SignalCategory = "supplier_risk"
	CategoryNetworkDesign         SignalCategory = "network_design"
	CategoryAnalyticsReporting    SignalCategory = "analytics_reporting"
	CategoryGeneralOperations     SignalCategory = "general_operations"
)

// AllSignalCategories returns the categories in their canonical iteration
// order. The fallback classifier resolves score ties by this order.
func AllSignalCategories() []SignalCategory {
	return []SignalCategory{
		CategoryPlanningVisibility,
		CategoryInventoryOptimization,
		CategoryProcurementSourcing,
		CategoryTMSLogistics,
		CategoryWMSWarehouse,
		CategoryS2PTransformation,
		CategoryERPMigration,
		CategorySupplierRisk,
		CategoryNetworkDesign,
		CategoryAnalyticsReporting,
		CategoryGeneralOperations,
	}
}

// ValidSignalCategory reports whether c is a known category.
func ValidSignalCategory(c SignalCategory) bool {
	for _, v := range AllSignalCategories() {
		if v == c {
			return true
		}
	}
	return false
}

// SignalStrength is a coarse confidence bucket independent of the numeric
// confidence score.
type SignalStrength string

const (
	StrengthStrong   SignalStrength = "strong"
	StrengthModerate SignalStrength = "moderate"
	StrengthWeak     SignalStrength = "weak"
)

// ValidSignalStrength reports whether s is a known strength level.
func ValidSignalStrength(s SignalStrength) bool {
	return s == StrengthStrong || s == StrengthModerate || s == StrengthWeak
}

// BuyingStage is a position in the five-step buying funnel.
type BuyingStage string

const (
	StageAwareness      BuyingStage = "awareness"
	StageResearch       BuyingStage = "research"
	StageEvaluation     BuyingStage = "evaluation"
	StageDecision       BuyingStage = "decision"
	StageImplementation BuyingStage = "implementation"
)

// buyingStageOrder defines the funnel progression. Per-company stage
// tracking is monotone with respect to this order.
var buyingStageOrder = []BuyingStage{
	StageAwareness,
	StageResearch,
	StageEvaluation,
	StageDecision,
	StageImplementation,
}

// StageRank returns the funnel position of s, or -1 for an unknown stage.
func StageRank(s BuyingStage) int {
	for i, v := range buyingStageOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// ValidBuyingStage reports whether s is a known stage.
func ValidBuyingStage(s BuyingStage) bool {
	return StageRank(s) >= 0
}

// SignalClassification is the classifier's verdict for one event.
type SignalClassification struct {
	IsSignal         bool           `json:"is_signal"`
	Confidence       float64        `json:"confidence"`
	Category         SignalCategory `json:"category"`
	Strength         SignalStrength `json:"strength"`
	BuyingStage      BuyingStage    `json:"buying_stage"`
	Reasoning        string         `json:"reasoning"`
	Keywords         []string       `json:"keywords"`
	SuggestedActions []string       `json:"suggested_actions"`
}
