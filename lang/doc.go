// Package lang parses the bracketed configuration language consumed by the
// munger and builds a typed document from it.
//
// # Grammar
//
// Informal EBNF:
//
//	Document   → Statement* EOF
//	Statement  → Keyword Args '{' Property* '}'   (document level only)
//	           | Name Args ';'
//	           | Name Args '{' Statement* '}'
//	Property   → Name Args ';'
//	Args       → '(' (Literal (',' Literal)*)? ')'
//	Literal    → Number | String
//	Number     → [+-]? (Digits ('.' Digits?)? | '.' Digits) ([eE] [+-]? Digits)?
//	String     → '"' [^"\n]* '"' | "'" [^'\n]* "'"
//	Keyword    → Object | Region | Hint | Barrier | Hub | Connection
//
// Line comments start with // and run to the end of the line.
//
// Animation, Barrier, Hint, Object, and Region are reserved and may never
// name a generic instance. Hub and Connection are keywords only at document
// level; nested inside a scoped instance they are ordinary names. A
// document-level Hub or Connection that does not fit its keyword rule, such
// as a property or a body with nested scopes, is parsed as a generic
// instance.
//
// # Example
//
//	Version(10);
//
//	Path("cp4_spawn")
//	{
//	    SplineType("Hermite");
//	    Nodes(1)
//	    {
//	        Node()
//	        {
//	            Position(-131.019501, 0.000000, -251.667999);
//	        }
//	    }
//	}
//
//	Object("com_bldg_controlzone", "com_bldg_controlzone", 1)
//	{
//	    ChildRotation(1.000, 0.000, 0.000, 0.000);
//	    ChildPosition(-51.4, 0.0, 36.1);
//	    Team(1);
//	}
//
// # Numbers
//
// How a number is stored depends on the document [Kind], and can be
// overridden with [WithFloats] and [WithStrings]. String coercion stores the
// canonical text of the number, float coercion stores every number as a
// float, and with neither a number is an integer unless written with a
// fraction or exponent.
//
// # Platform blocks
//
// A scoped instance named pc, ps2, or xbox is a platform block. While
// parsing, the block is replaced by its children if it names the platform
// selected with [WithPlatform], and dropped otherwise.
package lang
