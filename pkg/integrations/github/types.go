package github

// RawNode is one repository node exactly as the GraphQL API returned it.
// Numbers are json.Number values. Use [Normalize] to turn it into a
// repo.Repository.
type RawNode = map[string]any

// User represents a GitHub user.
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Email     string `json:"email"`
}

// OAuthConfig holds OAuth configuration.
type OAuthConfig struct {
	ClientID string
	Scope    string
}

// OAuthToken represents an OAuth access token response.
type OAuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

// graphQLRequest is the POST body of a GraphQL query.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// repositoriesResponse is the envelope of the repositories query.
// Nodes stay untyped so that a malformed field never fails the whole decode.
type repositoriesResponse struct {
	Data *struct {
		User *struct {
			Repositories struct {
				Nodes []RawNode `json:"nodes"`
			} `json:"repositories"`
		} `json:"user"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}
