// Package techstack turns raw dependency names into technology labels.
//
// [Normalize] maps a package name such as "react-dom" or "@vitejs/plugin-react"
// to the label shown on the portfolio ("React", "Vite"). Tooling noise such as
// type stubs, lint configs and test runners is rejected.
//
// [Set] collects labels once each in first-seen order; it is used to count a
// technology at most once per repository.
package techstack
