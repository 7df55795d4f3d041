package oracle

import "fmt"

// FallbackConcepts is the hardcoded syllabus used when concept generation
// fails. The quiz must be able to start without a working AI backend.
func FallbackConcepts(topic string) []Concept {
	switch topic {
	case "Algebra":
		return []Concept{
			{Name: "Basic Operations", Description: "Addition, subtraction, multiplication, division.", BaseDifficulty: 1},
			{Name: "Solving Linear Equations", Description: "Equations with one variable.", BaseDifficulty: 2},
			{Name: "Factoring Simple Polynomials", Description: "Factoring expressions like x^2 + bx + c.", BaseDifficulty: 3},
			{Name: "Systems of Two Equations", Description: "Solving two linear equations simultaneously.", BaseDifficulty: 4},
			{Name: "Quadratic Equations", Description: "Solving equations of the form ax^2 + bx + c = 0.", BaseDifficulty: 5},
		}
	case "Calculus":
		return []Concept{
			{Name: "Limits", Description: "Understanding limits of functions.", BaseDifficulty: 1},
			{Name: "Basic Derivatives", Description: "Derivatives of simple power functions.", BaseDifficulty: 2},
			{Name: "Chain Rule", Description: "Applying the chain rule for derivatives.", BaseDifficulty: 3},
			{Name: "Basic Integrals", Description: "Indefinite integrals of simple functions.", BaseDifficulty: 4},
			{Name: "Definite Integrals", Description: "Calculating definite integrals.", BaseDifficulty: 5},
		}
	case "Geometry":
		return []Concept{
			{Name: "Basic Shapes & Area", Description: "Area of squares, rectangles, triangles.", BaseDifficulty: 1},
			{Name: "Perimeter & Circumference", Description: "Perimeter of polygons and circumference of circles.", BaseDifficulty: 2},
			{Name: "Angles & Lines", Description: "Parallel lines, transversals, and angles.", BaseDifficulty: 3},
			{Name: "Pythagorean Theorem", Description: "Applying the theorem to right triangles.", BaseDifficulty: 4},
			{Name: "Volume of 3D Shapes", Description: "Volume of prisms, cylinders, spheres.", BaseDifficulty: 5},
		}
	case "Statistics":
		return []Concept{
			{Name: "Mean, Median, Mode", Description: "Measures of central tendency.", BaseDifficulty: 1},
			{Name: "Range & Variance", Description: "Measures of spread.", BaseDifficulty: 2},
			{Name: "Probability of Events", Description: "Calculating simple probabilities.", BaseDifficulty: 3},
			{Name: "Normal Distribution Basics", Description: "The normal curve and standard deviation.", BaseDifficulty: 4},
			{Name: "Correlation & Regression", Description: "Relationships between variables.", BaseDifficulty: 5},
		}
	case "Basic Arithmetic":
		return []Concept{
			{Name: "Addition & Subtraction", Description: "Operations with whole numbers.", BaseDifficulty: 1},
			{Name: "Multiplication & Division", Description: "Operations with whole numbers.", BaseDifficulty: 2},
			{Name: "Fractions & Decimals", Description: "Basic operations and conversions.", BaseDifficulty: 3},
			{Name: "Percentages", Description: "Calculating percentages and parts of a whole.", BaseDifficulty: 4},
			{Name: "Order of Operations", Description: "Solving multi-step expressions correctly.", BaseDifficulty: 5},
		}
	default:
		return []Concept{
			{Name: topic + " Basics", Description: "Fundamental concepts in " + topic + ".", BaseDifficulty: 1},
			{Name: topic + " Intermediate", Description: "Intermediate problems in " + topic + ".", BaseDifficulty: 3},
			{Name: topic + " Advanced", Description: "Complex problems in " + topic + ".", BaseDifficulty: 5},
		}
	}
}

// FallbackQuestion is served when question generation fails after retries,
// so an answer submission never strands the client without a next question.
func FallbackQuestion(topic, concept string, level int) Question {
	return Question{
		Text:        fmt.Sprintf("We couldn't generate a new %s question right now. Please try again later.", topic),
		Answer:      "N/A",
		Explanation: "No explanation available for this fallback question.",
		Skill:       concept,
		Difficulty:  level,
	}
}
