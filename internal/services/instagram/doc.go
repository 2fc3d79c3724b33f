// Package instagram talks to the Instagram Graph API: it creates media
// containers, polls their processing status, and publishes them.
package instagram
