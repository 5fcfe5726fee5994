package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"pharmacli/internal/chart"
	"pharmacli/internal/cluster"
	"pharmacli/internal/report"
)

// runClustering groups the companies into peer clusters by k-means over the
// configured feature set, then writes the assignments, the per-cluster
// profiles and a PCA scatter colored by cluster.
func (r *Runner) runClustering(ctx context.Context, d *Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var features []cluster.Feature
	for _, f := range r.cfg.Clustering.Features {
		features = append(features, cluster.Feature(f))
	}

	analyzer, err := cluster.NewAnalyzer(cluster.Config{
		Features:      features,
		KMin:          r.cfg.Clustering.KMin,
		KMax:          r.cfg.Clustering.KMax,
		Seed:          r.cfg.Clustering.Seed,
		Restarts:      r.cfg.Clustering.Restarts,
		MaxIterations: r.cfg.Clustering.MaxIterations,
	}, r.logger)
	if err != nil {
		return err
	}

	res, err := analyzer.Run(d.Companies)
	if err != nil {
		return err
	}

	if err := r.writeAssignments(res); err != nil {
		return err
	}
	if err := r.writeProfiles(res); err != nil {
		return err
	}

	groups := make([][]chart.Point, res.SelectedK)
	for _, asg := range res.Assignments {
		groups[asg.Cluster] = append(groups[asg.Cluster], chart.Point{
			X: asg.X, Y: asg.Y, Label: asg.Name,
		})
	}
	if err := r.figures.Scatter("fig_04_pca_scatter.png", chart.ScatterOptions{
		Title:    fmt.Sprintf("Company Clusters (k=%d, PCA projection)", res.SelectedK),
		XLabel:   "PC1",
		YLabel:   "PC2",
		Groups:   groups,
		Annotate: true,
	}); err != nil {
		return fmt.Errorf("render cluster scatter: %w", err)
	}

	return r.writeClusterReport(d, res)
}

func (r *Runner) writeAssignments(res *cluster.Result) error {
	headers := []string{"code", "name", "cluster"}
	for _, f := range res.Features {
		headers = append(headers, string(f))
	}
	headers = append(headers, "pc1", "pc2")

	rows := make([][]string, 0, len(res.Assignments))
	for _, asg := range res.Assignments {
		row := []string{asg.Code, asg.Name, fmt.Sprint(asg.Cluster)}
		for _, v := range asg.Features {
			row = append(row, fmt.Sprintf("%.4f", v))
		}
		row = append(row, fmt.Sprintf("%.4f", asg.X), fmt.Sprintf("%.4f", asg.Y))
		rows = append(rows, row)
	}
	if err := r.csv.WriteSimpleCSV("04_cluster_assignments.csv", headers, rows); err != nil {
		return fmt.Errorf("write cluster assignments: %w", err)
	}
	return nil
}

func (r *Runner) writeProfiles(res *cluster.Result) error {
	headers := []string{"cluster", "size", "members"}
	for _, f := range res.Features {
		headers = append(headers, "centroid_"+string(f))
	}

	csvRows := make([][]string, 0, len(res.Profiles))
	xlsxRows := make([][]interface{}, 0, len(res.Profiles))
	for _, p := range res.Profiles {
		row := []string{fmt.Sprint(p.Cluster), fmt.Sprint(p.Size), strings.Join(p.Members, " ")}
		xrow := []interface{}{p.Cluster, p.Size, strings.Join(p.Members, " ")}
		for _, c := range p.Centroid {
			row = append(row, fmt.Sprintf("%.4f", c))
			xrow = append(xrow, c)
		}
		csvRows = append(csvRows, row)
		xlsxRows = append(xlsxRows, xrow)
	}
	if err := r.csv.WriteSimpleCSV("04_cluster_profiles.csv", headers, csvRows); err != nil {
		return fmt.Errorf("write cluster profiles: %w", err)
	}
	if err := r.xlsx.WriteTable("04_cluster_profiles.xlsx", "Clusters", headers, xlsxRows); err != nil {
		return fmt.Errorf("write cluster workbook: %w", err)
	}
	return nil
}

func (r *Runner) writeClusterReport(d *Dataset, res *cluster.Result) error {
	var ks []int
	for k := range res.Scores {
		ks = append(ks, k)
	}
	sort.Ints(ks)

	scoreRows := make([][]string, 0, len(ks))
	for _, k := range ks {
		selected := ""
		if k == res.SelectedK {
			selected = "selected"
		}
		scoreRows = append(scoreRows, []string{fmt.Sprint(k), fmt.Sprintf("%.4f", res.Scores[k]), selected})
	}

	nameOf := make(map[string]string, len(res.Assignments))
	for _, asg := range res.Assignments {
		nameOf[asg.Code] = asg.Name
	}

	var memberLines []string
	for _, p := range res.Profiles {
		memberLines = append(memberLines, fmt.Sprintf("### Cluster %d (%d companies)", p.Cluster, p.Size))
		for _, code := range p.Members {
			memberLines = append(memberLines, fmt.Sprintf("%s (%s)", nameOf[code], code))
		}
		memberLines = append(memberLines, "")
	}
	if len(res.Excluded) > 0 {
		memberLines = append(memberLines,
			fmt.Sprintf("Excluded for undefined features: %s", strings.Join(res.Excluded, ", ")))
	}

	profileHeaders := []string{"cluster", "size"}
	for _, f := range res.Features {
		profileHeaders = append(profileHeaders, string(f))
	}
	profileRows := make([][]string, 0, len(res.Profiles))
	for _, p := range res.Profiles {
		row := []string{fmt.Sprint(p.Cluster), fmt.Sprint(p.Size)}
		for _, c := range p.Centroid {
			row = append(row, fmt.Sprintf("%.2f", c))
		}
		profileRows = append(profileRows, row)
	}

	doc := report.Document{
		Title: "Company Clustering",
		Meta: append(d.metaLines(),
			fmt.Sprintf("Selected k: %d (silhouette)", res.SelectedK),
			fmt.Sprintf("Features: %s", featureList(res.Features)),
		),
		Sections: []report.Section{
			report.TableSection("Silhouette Scores", []string{"k", "score", ""}, scoreRows),
			report.TableSection("Cluster Profiles (centroids, original scale)", profileHeaders, profileRows),
			{Heading: "Cluster Members", Lines: memberLines},
		},
	}
	return r.reports.Write(filepath.Join(r.cfg.Output.Dir, "04_summary.md"), doc, r.cfg.Output.OverwriteCommentary)
}

func featureList(features []cluster.Feature) string {
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
