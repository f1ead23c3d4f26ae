package drafts

import "strings"

// Built-in starter templates, keyed by language and problem id. The three
// known problems (twoSum, isPalindrome, fizzBuzz) ship function-only
// skeletons; every other problem id gets the generic per-language
// placeholder.

const (
	genericJava  = "// Implement your function here"
	genericOther = "// Write your function"
	genericPy    = "# Write your function"
)

var javaTemplates = map[int64]string{
	1: "// Implement function only\npublic int[] twoSum(int[] nums, int target) {\n    // TODO: write logic\n    return new int[]{0,0};\n}",
	2: "// Implement function only\npublic boolean isPalindrome(int x) {\n    // TODO: write logic\n    return false;\n}",
	3: "// Implement function only\npublic java.util.List<String> fizzBuzz(int n) {\n    java.util.List<String> res = new java.util.ArrayList<>();\n    // TODO: write logic\n    return res;\n}",
}

var pythonTemplates = map[int64]string{
	1: "# def two_sum(nums: List[int], target: int) -> List[int]:\n#     pass",
	2: "# def is_palindrome(x: int) -> bool:\n#     pass",
	3: "# def fizz_buzz(n: int) -> List[str]:\n#     pass",
}

var cppTemplates = map[int64]string{
	1: "// vector<int> twoSum(vector<int>& nums, int target) {\n// }",
	2: "// bool isPalindrome(int x) {\n// }",
	3: "// vector<string> fizzBuzz(int n) {\n// }",
}

var javascriptTemplates = map[int64]string{
	1: "// function twoSum(nums, target) {\n// }",
	2: "// function isPalindrome(x) {\n// }",
	3: "// function fizzBuzz(n) {\n// }",
}

// Template returns the deterministic starter text for a (language, problem)
// pair.
func Template(language string, problemID int64) string {
	switch language {
	case "java":
		if t, ok := javaTemplates[problemID]; ok {
			return t
		}
		return genericJava
	case "python":
		if t, ok := pythonTemplates[problemID]; ok {
			return t
		}
		return genericPy
	case "cpp":
		if t, ok := cppTemplates[problemID]; ok {
			return t
		}
		return genericOther
	case "javascript":
		if t, ok := javascriptTemplates[problemID]; ok {
			return t
		}
		return genericOther
	}
	return genericOther
}

// templateFragments are the markers IsDefaultTemplate looks for. A text
// containing any of them is treated as an unedited starter.
var templateFragments = []string{
	"Implement",
	"Write your function",
	"def two_sum",
	"vector<int> twoSum",
	"function twoSum",
}

// IsDefaultTemplate reports whether text still looks like a built-in starter
// template. It is a fragment heuristic, not a dirty flag, so user code that
// happens to contain one of the fragments is classified as unedited; problem
// switches will then silently refresh it.
func IsDefaultTemplate(text string) bool {
	for _, fragment := range templateFragments {
		if strings.Contains(text, fragment) {
			return true
		}
	}
	return false
}
