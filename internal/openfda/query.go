// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openfda

import (
	"fmt"
	"net/url"
	"strconv"
)

// buildSearchQuery constructs an openFDA search expression for the given
// product code. Product codes are matched exactly against the indexed
// product_code field.
func buildSearchQuery(productCode string) string {
	return fmt.Sprintf("product_code:%s", productCode)
}

// buildRequestURL assembles the full request URL for one page of results.
// The skip and limit parameters implement the API's offset pagination.
func buildRequestURL(endpoint, productCode string, opts FetchOptions) string {
	params := url.Values{}
	params.Set("search", buildSearchQuery(productCode))
	params.Set("limit", strconv.Itoa(normalizePageSize(opts.PageSize)))
	params.Set("skip", strconv.Itoa(opts.Skip))
	return endpoint + "?" + params.Encode()
}
