// Package analysis wires the dataset, metrics, clustering, chart and report
// layers into the four deliverable analyses:
//
//  1. Positioning — company size against efficiency
//  2. Profitability decomposition — operating vs net margin and the gap
//  3. Capital efficiency — ROA, ROE, equity ratio, asset turnover
//  4. Clustering — k-means peer groups with PCA display coordinates
//
// Every analysis shares one loaded dataset and writes its own table (CSV and
// XLSX), figures (PNG) and markdown summary under the output directory, named
// by analysis number. Analyses are independent: one failing does not poison
// the others unless the caller asks to stop on the first error.
package analysis
