package templates

// ExperimentRow is one line of the experiments table.
type ExperimentRow struct {
	Slug              string
	RecipeSlug        string
	Name              string
	TypeLabel         string
	Status            string
	PublishStatus     string
	Owner             string
	FirefoxMinVersion string
	StartDate         string
	EnrollmentDays    int
	SummaryAction     string
	Published         bool
}

type ExperimentsPage struct {
	Experiments []ExperimentRow
	Sort        string
	Descending  bool
	// SortFields are the columns the list can be ordered by.
	SortFields []string
}
