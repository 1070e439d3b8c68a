// Package build turns a resolved Marefile into rules and runs them.
//
// A [Builder] reads platforms, configurations and targets through an
// [engine.Engine]. Each target becomes one rule per source file plus a final
// rule. A [RuleSet] links rules whose inputs are produced by other rules and
// activates the requested targets together with the targets they depend on.
//
// A [Scheduler] runs a RuleSet with at most N commands at a time. A rule
// runs when any input is newer than its oldest output, when an output or
// input is missing, or when a rule it depends on ran. Commands run through
// a [Spawner] and file times come from a [FileSystem], so both can be
// replaced in tests.
//
// The built-in keys, including the cSource, cppSource, cApplication,
// cppApplication and staticLibrary templates, are bound before the Marefile
// is loaded:
//
//	targets = {
//	  app = cppApplication + {
//	    files = { "src/*.cpp" = cppSource }
//	    dependencies = { util }
//	  }
//	  util = staticLibrary + {
//	    files = { "util/*.cpp" = cppSource }
//	  }
//	}
package build
