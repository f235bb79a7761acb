// Package pipeline builds trees of reusable GitLab CI jobs and job collections
// and flattens them into a pipeline document.
//
// Jobs and collections are plain templates. Adding a child to a collection
// only records a reference; jobs are copied when a collection is populated, so
// the same tree can be rendered any number of times and mounted at several
// places of one pipeline. Every mount may give its child a name and a stage,
// which are prepended to the names of all jobs below it:
//
//	job := pipeline.MustNewJob(pipeline.JobConfig{Name: "unit", Stage: "test", Scripts: []string{"go test ./..."}})
//	matrix := pipeline.NewJobCollection().
//		AddChildren(pipeline.Mount{Name: "linux"}, job).
//		AddChildren(pipeline.Mount{Name: "darwin"}, job)
//	p := pipeline.NewPipeline()
//	p.AddChildren(pipeline.Mount{}, matrix)
//	doc, err := p.Render() // jobs "linux-unit-test" and "darwin-unit-test"
//
// Collections configure their descendants in three tiers per attribute:
// Initialize* fills a value the job does not have yet, Add*/Assign* merges
// into it and Override* replaces it. Needs and dependencies configured on a
// collection only reach the jobs of the first stage it produces.
package pipeline
