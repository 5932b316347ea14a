package constants

// AuthorizationHeader is the header name for bearer-token authorization
// sent to LMS and Git platform APIs.
const AuthorizationHeader string = "Authorization"

// UserAgentHeader is the header name used to identify this tool to
// upstream APIs.
const UserAgentHeader string = "User-Agent"

// LinkHeader is the header name platforms use for RFC 5988 pagination.
const LinkHeader string = "Link"
