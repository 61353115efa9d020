// Package versioning declares API versions, derives one descriptor per version
// for documentation, and resolves the {version} route segment of requests.
package versioning
