package assistantnode

import (
	"strings"

	statex "github.com/samantha-labs/assistant/agent/state"
)

const notesPathPrefix = "https://github.com/"

// ConfigurationRouter gates the turn on account setup. Unauthenticated
// threads go to the auth flow; threads without a valid notes path are held
// until the user supplies a repository URL, and a URL-looking message is
// treated as that answer.
func ConfigurationRouter(st *statex.ConversationState) string {
	if st == nil || !st.IsAuthenticated {
		return RouteAuthFlow
	}
	if !strings.HasPrefix(st.NotesPath, notesPathPrefix) {
		if strings.HasPrefix(strings.ToLower(st.LatestText()), "http") {
			return RouteUpdateNotesPath
		}
		return RouteWaitForInput
	}
	return RouteContinue
}
