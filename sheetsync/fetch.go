package sheetsync

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
	"time"

	"orderhub/bizerror"
	"orderhub/feed"
)

var feedClient = &http.Client{
	Transport: &TracingTransport{Transport: http.DefaultTransport},
	Timeout:   30 * time.Second,
}

// DetectVariant picks the feed decoding variant from the URL shape: the
// visualization-query export delivers the wrapped envelope, everything else is
// expected to serve a plain JSON array.
func DetectVariant(url string) feed.Variant {
	if strings.Contains(url, "gviz") || strings.Contains(url, "tqx=") {
		return feed.VariantWrapped
	}
	return feed.VariantArray
}

// FetchFeed GETs the sheet export with a cache-busting parameter so that
// intermediaries never serve a stale snapshot.
func FetchFeed(url string) ([]byte, feed.Variant, error) {
	separator := "?"
	if strings.Contains(url, "?") {
		separator = "&"
	}
	bustedURL := url + separator + "cachebust=" + strconv.FormatInt(time.Now().UnixNano(), 10)

	req, err := http.NewRequest(http.MethodGet, bustedURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", bizerror.ErrFetchFailure, err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := feedClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", bizerror.ErrFetchFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("%w: status %s", bizerror.ErrFetchFailure, resp.Status)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", bizerror.ErrFetchFailure, err)
	}
	return body, DetectVariant(url), nil
}
