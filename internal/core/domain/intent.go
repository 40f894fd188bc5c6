package domain

import "strings"

// Intent is the classified category of a user question.
type Intent string

// Known intents.
const (
	// IntentSQLQuery is a question answerable by querying the data.
	IntentSQLQuery Intent = "SQL_QUERY"

	// IntentDataAssistance is a question about the schema itself.
	IntentDataAssistance Intent = "DATA_ASSISTANCE"

	// IntentGeneralConversation is small talk or general knowledge.
	IntentGeneralConversation Intent = "GENERAL_CONVERSATION"

	// IntentUnknown is the fallback when classification fails.
	IntentUnknown Intent = "UNKNOWN"
)

// ParseIntent maps s to a known intent. Anything unrecognised is IntentUnknown.
func ParseIntent(s string) Intent {
	switch Intent(strings.ToUpper(strings.TrimSpace(s))) {
	case IntentSQLQuery:
		return IntentSQLQuery
	case IntentDataAssistance:
		return IntentDataAssistance
	case IntentGeneralConversation:
		return IntentGeneralConversation
	default:
		return IntentUnknown
	}
}

// String returns the string representation.
func (i Intent) String() string {
	return string(i)
}

// AllIntents returns the intents a classifier may produce, UNKNOWN excluded.
func AllIntents() []Intent {
	return []Intent{
		IntentSQLQuery,
		IntentDataAssistance,
		IntentGeneralConversation,
	}
}
