// Package lang parses the Marefile build-description language into an
// immutable [Statement] tree.
//
// No evaluation happens here. Substitutions such as $(name) are kept as
// literal text and expanded later by package engine.
//
// # Grammar
//
// Informal EBNF:
//
//	file        = { statement } EOF
//	statements  = '{' { statement } '}' | statement
//	statement   = 'if' expr statements [ 'else' statements ]
//	            | 'include' (string|quotedstring)
//	            | assignment
//	            ; { ',' | ';' }
//	assignment  = '-' (string|quotedstring)
//	            | (string|quotedstring) [ ('='|'+='|'-=') expr ]
//	expr        = orformula [ '?' expr ':' expr ]
//	orformula   = andformula { '||' andformula }
//	andformula  = comparison { '&&' comparison }
//	comparison  = relation { ('=='|'!=') relation }
//	relation    = concat { ('<'|'>'|'<='|'>=') concat }
//	concat      = value { ('+'|'-') value }
//	value       = '!' value | '(' expr ')' | '{' { statement } '}'
//	            | 'true' | 'false' | string | quotedstring
//
// Comments use // and /* */. An unquoted string in value position names
// another key (a [Reference]) unless it contains a $( substitution.
//
// # Example
//
//	platforms = { Linux }
//	configurations = { Debug, Release }
//
//	targets = {
//	  myApp = cppApplication + {
//	    files = "src/**.cpp"
//	    if configuration == "Debug" {
//	      cppFlags += "-g"
//	    }
//	  }
//	}
package lang
