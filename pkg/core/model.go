package core

// DBStores contains collection of flakewatch dbstores
type DBStores struct {
	ProjectStore    ProjectStore
	SubmissionStore SubmissionStore
	OutcomeStore    TestOutcomeStore
	FlakyTestStore  FlakyTestStore
}

// ResponseMetadata contains meta data for paginated api response
type ResponseMetadata struct {
	NextCursor string `json:"next_cursor"`
}
