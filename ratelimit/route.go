package ratelimit

import (
	"regexp"
	"strings"
)

var (
	snowflakePattern  = regexp.MustCompile(`^\d{15,21}$`)
	apiVersionPattern = regexp.MustCompile(`^v\d+$`)
)

// majorResources are the path roots whose id scopes a Discord rate-limit bucket.
var majorResources = map[string]struct{}{
	"channels":     {},
	"guilds":       {},
	"webhooks":     {},
	"interactions": {},
}

// RouteOf derives the bucket route (verb + path template) and the major resource
// id from a request method and URL path.
//
//	RouteOf("POST", "/api/v10/channels/123456789012345678/messages")
//	  => "POST /channels/{major}/messages", "123456789012345678"
func RouteOf(method, path string) (route, major string) {
	segments := strings.Split(strings.Trim(path, "/"), "/")

	// Drop the "/api/vN" prefix.
	if len(segments) >= 2 && segments[0] == "api" && apiVersionPattern.MatchString(segments[1]) {
		segments = segments[2:]
	} else if len(segments) >= 1 && segments[0] == "api" {
		segments = segments[1:]
	}

	template := make([]string, 0, len(segments))
	for i, seg := range segments {
		switch {
		case i == 1 && isMajor(segments[0]) && seg != "":
			major = seg
			template = append(template, "{major}")
		case i > 0 && segments[i-1] == "reactions":
			template = append(template, "{emoji}")
		case i == 2 && (segments[0] == "webhooks" || segments[0] == "interactions"):
			// Webhook and interaction tokens.
			template = append(template, "{token}")
		case snowflakePattern.MatchString(seg):
			template = append(template, "{id}")
		default:
			template = append(template, seg)
		}
	}

	return strings.ToUpper(method) + " /" + strings.Join(template, "/"), major
}

func isMajor(segment string) bool {
	_, ok := majorResources[segment]
	return ok
}
