// Package rewrite renames documents for a static-site build and rewrites the relative
// hrefs between them so links keep pointing at the right file.
//
// Files stream through four stages:
//
//  1. rebase: the file is cloned onto the virtual root "/".
//  2. filepath index: Transform decides the file's new path; (old, new) is recorded.
//  3. index-file index: when the file is an index document (README, index) the
//     mapping from its directory to its new directory is recorded.
//  4. finalize: the clone gets a Resolver attached and its final path assigned.
//
// Both mappings are owned by the Pipeline for the duration of a run and only grow.
// In batch mode nothing is emitted before the input ends, so every Resolver sees the
// complete mappings. In incremental mode each file is emitted as soon as it is
// indexed; its Resolver reads the live mappings and may miss files that have not
// arrived yet.
package rewrite
