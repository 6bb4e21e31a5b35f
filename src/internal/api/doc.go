// Package api provides the local REST API of the netpolicy daemon.
//
// The API exposes the network policy registry to other local processes:
//   - the effective policy, user agents and cipher suites
//   - reading and changing options (changes reach the registry through the store)
//   - clearing cookies and the disk cache
//   - creating sessions and fetching through them
//
// Only loopback clients are served.
//
// # Response Format
//
// All successful responses wrap data in a "data" field:
//
//	{
//	  "data": { /* response payload */ }
//	}
//
// Error responses use the following format:
//
//	{
//	  "error": {
//	    "code": "error_code",
//	    "message": "Human-readable error message",
//	    "details": { /* optional context */ }
//	  }
//	}
package api
