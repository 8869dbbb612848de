// Package main provides the entry point for the reconchain CLI.
//
// reconchain chains three ProjectDiscovery tools against one domain:
// subfinder enumerates subdomains, httpx keeps the hosts answering HTTP 200,
// and nuclei scans those hosts. Findings are classified live while nuclei
// runs, and a summary is written into a timestamped run directory.
//
// Usage:
//
//	reconchain scan example.com
//	reconchain scan -s critical,high -o /tmp/results example.com
//
// See --help for all available options.
package main

func main() {
	Execute()
}
