package domain

// AnswerKind tags the outcome carried by an Answer.
type AnswerKind string

// Answer kinds.
const (
	// AnswerSQL carries generated SQL, and a result when it was executed.
	AnswerSQL AnswerKind = "sql"

	// AnswerAssistance carries a schema description.
	AnswerAssistance AnswerKind = "assistance"

	// AnswerConversation carries a persona reply.
	AnswerConversation AnswerKind = "conversation"

	// AnswerFallback is the fixed reply for unclassifiable questions.
	AnswerFallback AnswerKind = "fallback"

	// AnswerNoData means retrieval found nothing relevant.
	AnswerNoData AnswerKind = "no_data"

	// AnswerProviderError means a model provider failed.
	AnswerProviderError AnswerKind = "provider_error"

	// AnswerRejected means generated SQL was refused before execution.
	AnswerRejected AnswerKind = "rejected"
)

// Answer is the outcome of handling one question.
type Answer struct {
	// ID identifies the answer, and the trace of the question in logs.
	ID string

	// Question is the text as asked.
	Question string

	// Intent is the classified intent.
	Intent Intent

	// Kind tags which of the fields below are meaningful.
	Kind AnswerKind

	// Text is the natural-language reply or error message shown to the user.
	Text string

	// SQL is the sanitized generated query (AnswerSQL, AnswerRejected).
	SQL string

	// Tables lists the tables shortlisted by retrieval.
	Tables []string

	// Refined is the narrowed schema handed to SQL generation.
	Refined RefinedSchema

	// Result is set when the SQL was executed successfully.
	Result *QueryResult

	// Err is the underlying failure for AnswerProviderError and AnswerRejected.
	Err error
}

// Failed reports whether the answer represents a failure path.
func (a *Answer) Failed() bool {
	return a.Kind == AnswerProviderError || a.Kind == AnswerRejected
}
