package injector

import (
	"fmt"
	"strconv"
)

// The scripts mirror what a user typing would cause the page to observe:
// mutate the element the way its kind expects, then dispatch the events the
// host page's own listeners react to.

func waitScript(selector string) string {
	return fmt.Sprintf(`document.querySelector(%s) !== null`, strconv.Quote(selector))
}

// typeScript appends text to the input element. Native inputs take it through
// the value property, editable containers through their text content. The
// synthesized input event bubbles, is cancelable, and carries the inserted
// text so reactive frameworks pick the change up.
func typeScript(selector, text string) string {
	sel := strconv.Quote(selector)
	quoted := strconv.Quote(text)
	return fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	if (!el) { return "missing"; }
	const text = %s;
	const tag = el.tagName.toLowerCase();
	if (tag === "textarea" || tag === "input") {
		el.value += text;
	} else {
		el.textContent += text;
	}
	el.dispatchEvent(new InputEvent("input", {
		inputType: "insertText",
		data: text,
		bubbles: true,
		cancelable: true,
	}));
	return "ok";
})()`, sel, quoted)
}

// submitScript presses Enter: a keydown the page's submit handler sees, then
// a trailing newline and a generic input event. Fire and forget; whether the
// page actually submits is up to its own handler.
func submitScript(selector string) string {
	sel := strconv.Quote(selector)
	return fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	if (!el) { return "missing"; }
	el.dispatchEvent(new KeyboardEvent("keydown", {
		bubbles: true,
		cancelable: true,
		key: "Enter",
		keyCode: 13,
	}));
	const tag = el.tagName.toLowerCase();
	if (tag === "textarea" || tag === "input") {
		el.value += "\n";
	} else {
		el.textContent += "\n";
	}
	el.dispatchEvent(new Event("input", { bubbles: true }));
	return "ok";
})()`, sel)
}
